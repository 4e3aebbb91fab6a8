package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	ArchiveNone  = "none"
	ArchiveLocal = "local"
	ArchiveS3    = "s3"
)

type Config struct {
	Addr               string
	Environment        string
	FrontendDir        string
	StoreDriver        string
	StorePath          string
	DatabaseURL        string
	RedisURL           string
	RedisPrefix        string
	RunMigrations      bool
	MigrationsDir      string
	RatesFile          string
	JWTSecret          string
	AdminPasswordHash  string
	TokenTTL           time.Duration
	DataEncryptionKey  string
	ArchiveDriver      string
	ArchiveDir         string
	S3Bucket           string
	S3Region           string
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	BackupInterval     time.Duration
	MaxBodyBytes       int64
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	LogLevel           string
	MetricsEnabled     bool
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("dotenv load failed", "err", err)
	}
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		FrontendDir:        getEnv("FRONTEND_DIR", "frontend/dist"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreFile)),
		StorePath:          getEnv("STORE_PATH", "storage/p9ify.json"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisPrefix:        getEnv("REDIS_PREFIX", "p9ify:"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RatesFile:          getEnv("RATES_FILE", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 12*time.Hour),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		ArchiveDriver:      strings.ToLower(getEnv("ARCHIVE_DRIVER", ArchiveNone)),
		ArchiveDir:         getEnv("ARCHIVE_DIR", "storage/documents"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Region:           getEnv("S3_REGION", "auto"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:        getEnv("S3_SECRET_KEY", ""),
		BackupInterval:     getEnvDuration("BACKUP_INTERVAL", 24*time.Hour),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 5*1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", nil),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

// AuthEnabled reports whether the API requires a bearer token.
func (c Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StoreFile:
		if strings.TrimSpace(c.StorePath) == "" {
			return fmt.Errorf("STORE_PATH is required when STORE_DRIVER is file")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	case StoreRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_DRIVER is redis")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, file, postgres, redis")
	}

	switch c.ArchiveDriver {
	case ArchiveNone, ArchiveLocal:
	case ArchiveS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return fmt.Errorf("S3_BUCKET is required when ARCHIVE_DRIVER is s3")
		}
	default:
		return fmt.Errorf("ARCHIVE_DRIVER must be one of none, local, s3")
	}

	if c.AuthEnabled() && strings.TrimSpace(c.AdminPasswordHash) == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be set when JWT_SECRET is set")
	}
	if c.Environment == "production" {
		if !c.AuthEnabled() {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}
