// Package config loads server and scheduler settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	FX       FXConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Platform PlatformConfig
	LogLevel string
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	// Driver is DriverSQLite or DriverPostgres.
	Driver string
	Path   string
	URL    string
}

// RedisConfig enables the shared rate cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// FXConfig selects the rate source. BaseURL wins over StaticRates.
type FXConfig struct {
	BaseURL     string
	AccessKey   string
	CacheTTL    time.Duration
	StaticRates string
}

// KafkaConfig enables event publishing when Brokers is not empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PlatformConfig identifies the platform entity. When EntityID is empty the
// server looks up, or creates, a platform entity with Name and Currency.
type PlatformConfig struct {
	EntityID string
	Name     string
	Currency string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	shutdown, err := getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("FX_CACHE_TTL", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getEnvDuration("JWT_TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            port,
			ShutdownTimeout: shutdown,
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
			Path:   getEnv("DB_PATH", "./data/ledger.db"),
			URL:    getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		FX: FXConfig{
			BaseURL:     getEnv("FX_BASE_URL", ""),
			AccessKey:   getEnv("FX_ACCESS_KEY", ""),
			CacheTTL:    cacheTTL,
			StaticRates: getEnv("FX_STATIC_RATES", ""),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "hostledger.events"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  tokenTTL,
		},
		Platform: PlatformConfig{
			EntityID: getEnv("PLATFORM_ENTITY_ID", ""),
			Name:     getEnv("PLATFORM_NAME", "Platform"),
			Currency: strings.ToUpper(getEnv("PLATFORM_CURRENCY", "USD")),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
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

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
