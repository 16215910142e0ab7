package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Common
	Environment string
	LogLevel    string

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Bar data on disk
	Data DataConfig

	// Session engine knobs
	Engine EngineConfig

	// REST API
	API APIConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// DataConfig holds bar file loading configuration
type DataConfig struct {
	Dir     string            // directory of per-instrument CSV files
	Aliases map[string]string // ticker alias -> canonical symbol
}

// EngineConfig holds session analytics configuration
type EngineConfig struct {
	Timezone            string // IANA zone of the exchange
	OpeningRangeMinutes int
	DefaultBucketMin    int
	PercentileBands     []float64
}

// APIConfig holds REST API configuration
type APIConfig struct {
	Port            int
	HealthCheckPort int
	JWTSecret       string
	RateLimitRPS    int
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory or parent directories
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "session_analytics"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Data: DataConfig{
			Dir:     getEnv("DATA_DIR", "./data"),
			Aliases: getEnvAsStringMap("DATA_TICKER_ALIASES", map[string]string{}),
		},
		Engine: EngineConfig{
			Timezone:            getEnv("ENGINE_TIMEZONE", "America/New_York"),
			OpeningRangeMinutes: getEnvAsInt("ENGINE_OPENING_RANGE_MINUTES", 1),
			DefaultBucketMin:    getEnvAsInt("ENGINE_DEFAULT_BUCKET_MINUTES", 1),
			PercentileBands:     getEnvAsFloatSlice("ENGINE_PERCENTILE_BANDS", []float64{1, 5, 10, 25, 75, 90, 95, 99}),
		},
		API: APIConfig{
			Port:            getEnvAsInt("API_PORT", 8090),
			HealthCheckPort: getEnvAsInt("API_HEALTH_PORT", 8091),
			JWTSecret:       getEnv("API_JWT_SECRET", ""),
			RateLimitRPS:    getEnvAsInt("API_RATE_LIMIT_RPS", 100),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.Engine.Timezone == "" {
		return fmt.Errorf("ENGINE_TIMEZONE is required")
	}
	if c.Engine.OpeningRangeMinutes < 1 {
		return fmt.Errorf("ENGINE_OPENING_RANGE_MINUTES must be at least 1")
	}
	if c.Engine.DefaultBucketMin < 1 {
		return fmt.Errorf("ENGINE_DEFAULT_BUCKET_MINUTES must be at least 1")
	}
	for _, p := range c.Engine.PercentileBands {
		if p <= 0 || p >= 100 {
			return fmt.Errorf("ENGINE_PERCENTILE_BANDS entries must be in (0, 100), got %v", p)
		}
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvAsFloatSlice(key string, defaultValue []float64) []float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]float64, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return defaultValue
		}
		result = append(result, f)
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// getEnvAsStringMap parses "alias1=SYM1,alias2=SYM2" pairs.
func getEnvAsStringMap(key string, defaultValue map[string]string) map[string]string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			continue
		}
		result[strings.ToUpper(kv[0])] = strings.ToUpper(kv[1])
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
