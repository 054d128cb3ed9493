package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration for the console service.
type Config struct {
	Env               string
	HTTPPort          string
	MetricsAddr       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	ConnectTimeout    time.Duration
	DefaultSchema     string
	DefaultPageSize   int
	MaxPageSize       int
	RateLimitCapacity int
	RateLimitRefill   float64
	RateLimitTTL      time.Duration
}

// Load reads configuration from environment variables with sane defaults for local development.
func Load() Config {
	return Config{
		Env:               getEnv("APP_ENV", "dev"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		MetricsAddr:       getEnv("METRICS_ADDR", ":9090"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		ConnectTimeout:    getEnvDuration("CONNECT_TIMEOUT", 10*time.Second),
		DefaultSchema:     getEnv("DEFAULT_SCHEMA", "pgboss"),
		DefaultPageSize:   getEnvInt("DEFAULT_PAGE_SIZE", 50),
		MaxPageSize:       getEnvInt("MAX_PAGE_SIZE", 200),
		RateLimitCapacity: getEnvInt("RATE_LIMIT_CAPACITY", 30),
		RateLimitRefill:   getEnvFloat("RATE_LIMIT_REFILL_PER_SEC", 10),
		RateLimitTTL:      getEnvDuration("RATE_LIMIT_TTL", time.Hour),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
