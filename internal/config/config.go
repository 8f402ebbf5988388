// Package config loads and validates environment variables at startup.
// Fail-fast: a malformed value stops the process before anything connects.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/threadswap/storefront/internal/api"
)

// Session store backends.
const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all runtime configuration for the storefront daemon.
type Config struct {
	Port         string
	APIURL       string
	AssetBaseURL string
	// SocketURL is optional; realtime invalidation is off without it.
	SocketURL string

	SessionStore string
	SessionFile  string
	SessionName  string
	RedisURL     string
	DatabaseURL  string

	CacheStale  time.Duration
	CacheGC     time.Duration
	HTTPTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env (if present) and the environment and returns a validated
// Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Port:         getenv("PORT", "8080"),
		APIURL:       getenv("API_URL", api.DefaultBaseURL),
		AssetBaseURL: getenv("S3_BASE_URL", api.DefaultAssetBaseURL),
		SocketURL:    os.Getenv("SOCKET_URL"),
		SessionStore: getenv("SESSION_STORE", StoreFile),
		SessionFile:  getenv("SESSION_FILE", ".storefront-session.json"),
		SessionName:  getenv("SESSION_NAME", "default"),
		RedisURL:     os.Getenv("REDIS_URL"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
	}

	var err error
	if cfg.CacheStale, err = seconds("CACHE_STALE_SECONDS", 0); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = seconds("HTTP_TIMEOUT_SECONDS", int(api.DefaultTimeout/time.Second)); err != nil {
		return nil, err
	}
	gcMinutes, err := integer("CACHE_GC_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	if gcMinutes <= 0 {
		return nil, fmt.Errorf("CACHE_GC_MINUTES must be positive")
	}
	cfg.CacheGC = time.Duration(gcMinutes) * time.Minute

	if cfg.RateLimitRPS, err = number("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = integer("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}

	switch cfg.SessionStore {
	case StoreFile:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when SESSION_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("SESSION_STORE must be file, redis or postgres, got %q", cfg.SessionStore)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func integer(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func number(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, v)
	}
	return f, nil
}

func seconds(key string, def int) (time.Duration, error) {
	n, err := integer(key, def)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
