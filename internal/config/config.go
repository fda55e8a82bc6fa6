// Package config loads process configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"shopledger/pkg/logger"
)

// Config is the full configuration of the server and worker binaries.
type Config struct {
	AppEnv string

	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      logger.Config
	Worker   WorkerConfig
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// RedisConfig configures the Redis client used for notification fan-out and job locks.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// JWTConfig configures access token signing.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// WorkerConfig configures the background notification jobs.
type WorkerConfig struct {
	Interval      time.Duration
	OverdueAfter  time.Duration
	LockTTL       time.Duration
	RelayInterval time.Duration
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds Config from the current environment only.
func FromEnv() (*Config, error) {
	appEnv := getEnv("APP_ENV", "development")
	cfg := &Config{
		AppEnv: appEnv,
		HTTP: HTTPConfig{
			Port:            getEnv("APP_PORT", "8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 25)),
			MinConns:        int32(getEnvInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "shopledger"),
			TTL:    getEnvDuration("JWT_TTL", 7*24*time.Hour),
		},
		Log: logger.Config{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: appEnv == "development",
		},
		Worker: WorkerConfig{
			Interval:      getEnvDuration("WORKER_INTERVAL", 24*time.Hour),
			OverdueAfter:  getEnvDuration("WORKER_OVERDUE_AFTER", 15*24*time.Hour),
			LockTTL:       getEnvDuration("WORKER_LOCK_TTL", 10*time.Minute),
			RelayInterval: getEnvDuration("WORKER_RELAY_INTERVAL", 5*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AppEnv == "production" && len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Worker.Interval <= 0 {
		return errors.New("WORKER_INTERVAL must be positive")
	}
	if c.Worker.RelayInterval <= 0 {
		return errors.New("WORKER_RELAY_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
