package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	Store             string
	DatabaseURL       string
	SQLitePath        string
	RoundEvery        time.Duration
	StaleListingAfter time.Duration
	Seed              int64
	LogLevel          slog.Level
	RunOnce           bool
	RedisURL          string
	RedisChannel      string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Store:             strings.ToLower(envDefault("ESTATES_STORE", StoreSQLite)),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:        envDefault("ESTATES_SQLITE_PATH", "data/estates.db"),
		RoundEvery:        envDurationDefault("ESTATES_ROUND_EVERY", 10*time.Second),
		StaleListingAfter: envDurationDefault("ESTATES_STALE_LISTING_AFTER", 100*time.Second),
		Seed:              envIntDefault("ESTATES_SEED", 0),
		LogLevel:          envLevelDefault("ESTATES_LOG_LEVEL", slog.LevelInfo),
		RunOnce:           envBoolDefault("ESTATES_WORKER_RUN_ONCE", false),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		RedisChannel:      envDefault("ESTATES_REDIS_CHANNEL", "estates:rounds"),
	}
	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreSQLite, StoreMemory:
	default:
		return cfg, fmt.Errorf("unknown ESTATES_STORE %q", cfg.Store)
	}
	if cfg.RoundEvery <= 0 {
		return cfg, fmt.Errorf("ESTATES_ROUND_EVERY must be positive")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envLevelDefault(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}
