// Command import loads a .csv or .xlsx catalogue file straight into the database,
// using the same duplicate rules as POST /api/products/import.
//
//	go run ./cmd/import -file products.csv
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"path/filepath"

	"go-inventory-catalog/internal/repository"
	"go-inventory-catalog/internal/service"
	"go-inventory-catalog/pkg/config"
	"go-inventory-catalog/pkg/database"
	"go-inventory-catalog/pkg/logger"

	"github.com/google/uuid"
)

func main() {
	file := flag.String("file", "", "path to a .csv or .xlsx file")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	// stdout carries the JSON result only
	zl := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})
	if *file == "" {
		zl.Fatal().Msg("usage: import -file <products.csv|products.xlsx>")
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.DB, zl, false)
	if err != nil {
		zl.Fatal().Err(err).Msg("database connection failed")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			zl.Error().Err(err).Msg("database close failed")
		}
	}()
	if err := repository.Migrate(db); err != nil {
		zl.Fatal().Err(err).Msg("migration failed")
	}

	// 3. Copy the file aside; the import removes what it processes.
	tmp, err := stage(*file, cfg.Import.UploadDir)
	if err != nil {
		zl.Fatal().Err(err).Str("file", *file).Msg("cannot stage file")
	}

	// 4. Import
	svc := service.NewImportService(repository.NewProductRepo(db), db, nil, nil)
	result, err := svc.ImportFile(context.Background(), tmp)
	if err != nil {
		zl.Fatal().Err(err).Msg("import failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	zl.Info().Int("added", result.Added).Int("skipped", result.Skipped).Int("failed", len(result.Failed)).Msg("import finished")
}

func stage(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, uuid.NewString()+filepath.Ext(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}
