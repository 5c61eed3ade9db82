package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-catalog/internal/cache"
	"go-inventory-catalog/internal/handler"
	"go-inventory-catalog/internal/middleware"
	"go-inventory-catalog/internal/repository"
	"go-inventory-catalog/internal/service"
	"go-inventory-catalog/internal/ws"
	"go-inventory-catalog/pkg/config"
	"go-inventory-catalog/pkg/database"
	"go-inventory-catalog/pkg/logger"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zl := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	// 2. Setup Database
	db, err := database.Connect(cfg.DB, zl, cfg.App.LogLevel == "debug")
	if err != nil {
		zl.Fatal().Err(err).Msg("database connection failed")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			zl.Error().Err(err).Msg("closing database")
		}
	}()
	if err := repository.Migrate(db); err != nil {
		zl.Fatal().Err(err).Msg("migration failed")
	}

	// 3. Optional listing cache
	var productCache cache.ProductCache = cache.Noop{}
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedis(cfg.Redis.URL)
		if err != nil {
			zl.Warn().Err(err).Msg("redis unavailable, listing cache disabled")
		} else {
			defer rdb.Close()
			productCache = cache.NewProductCache(rdb, cfg.Redis.TTL)
			zl.Info().Msg("listing cache enabled")
		}
	}

	// 4. Setup WebSocket Hub
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	logRepo := repository.NewInventoryLogRepo(db)

	auditService := service.NewAuditService(logRepo)
	invService := service.NewInventoryService(productRepo, logRepo, auditService, db, wsHub, productCache)
	importService := service.NewImportService(productRepo, db, wsHub, productCache)
	exportService := service.NewExportService(productRepo)
	dashService := service.NewDashboardService(productRepo, logRepo, cfg.LowStockThreshold)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.MaxUploadMB * 1024 * 1024,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(zl),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogger(zl))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.HTTP.CORSOrigins}))

	// Swagger UI at /docs; the middleware panics on a missing swagger file
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	}

	// 7. Routes
	handler.RegisterRoutes(app, handler.Handlers{
		Inventory: handler.NewInventoryHandler(invService),
		Transfer:  handler.NewTransferHandler(importService, exportService, cfg.Import.UploadDir),
		Dashboard: handler.NewDashboardHandler(dashService),
		Health:    handler.NewHealthHandler(db),
	})

	// WebSocket Route
	app.Use("/ws", ws.RequireUpgrade)
	app.Get("/ws", wsHub.Handler())

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.HTTP.Port); err != nil {
			zl.Error().Err(err).Msg("http server stopped")
		}
	}()
	zl.Info().Str("port", cfg.HTTP.Port).Str("env", cfg.App.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error().Err(err).Msg("server forced to shutdown")
	}
	stop()

	zl.Info().Msg("server exited")
}
