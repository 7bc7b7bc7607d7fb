package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Config is everything read from the environment at startup.
type Config struct {
	ListenAddr    string
	TokenSecret   string
	StoreURL      string // optional Postgres DSN for claims + leaderboard
	InstanceID    string
	MatchDuration time.Duration
	LogLevel      slog.Level
}

// Load reads the environment. Every field has a default; only the token
// secret is worth warning about.
func Load() *Config {
	cfg := &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		TokenSecret:   getEnv("TOKEN_SECRET", "dev-secret"),
		StoreURL:      getEnv("STORE_URL", ""),
		InstanceID:    getEnv("INSTANCE_ID", uuid.NewString()),
		MatchDuration: getDuration("MATCH_DURATION", 3*time.Minute),
		LogLevel:      parseLevel(getEnv("LOG_LEVEL", "info")),
	}
	if cfg.TokenSecret == "dev-secret" {
		slog.Warn("TOKEN_SECRET not set, using development default")
	}
	return cfg
}

// getEnv reads an environment variable and returns its value or a default.
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("unparseable duration, using default", "key", key, "value", raw)
		return defaultValue
	}
	return d
}

func parseLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
