package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config groups every runtime setting of the service.
type Config struct {
	App    AppConfig
	DB     DBConfig
	HTTP   HTTPConfig
	Redis  RedisConfig
	Import ImportConfig

	LowStockThreshold int
}

type AppConfig struct {
	Env      string // development, production
	Name     string
	LogLevel string
}

// DBConfig holds PostgreSQL settings. DatabaseURL wins over the discrete fields when set.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
}

// DSN returns the connection string handed to the postgres driver.
func (c DBConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type HTTPConfig struct {
	Port         string
	CORSOrigins  string
	SwaggerFile  string
	MaxUploadMB  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisConfig is optional; an empty URL disables the listing cache.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

type ImportConfig struct {
	UploadDir string
}

// Load reads .env (if any) into the process environment and resolves settings through viper.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
		},
		HTTP: HTTPConfig{
			Port:         v.GetString("PORT"),
			CORSOrigins:  v.GetString("CORS_ORIGINS"),
			SwaggerFile:  v.GetString("SWAGGER_FILE"),
			MaxUploadMB:  v.GetInt("MAX_UPLOAD_MB"),
			ReadTimeout:  v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("HTTP_WRITE_TIMEOUT"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
			TTL: v.GetDuration("CACHE_TTL"),
		},
		Import: ImportConfig{
			UploadDir: v.GetString("UPLOAD_DIR"),
		},
		LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
	}

	if cfg.HTTP.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.HTTP.MaxUploadMB)
	}
	if cfg.LowStockThreshold < 0 {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative, got %d", cfg.LowStockThreshold)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "Inventory Catalog v1.0")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "inventory")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("PORT", "3000")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("SWAGGER_FILE", "./docs/swagger.json")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("HTTP_READ_TIMEOUT", "15s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "30s")

	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
}
