package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the API server.
type Config struct {
	Port            string
	DatabaseURL     string
	SessionSecret   string
	TokenTTL        time.Duration
	LogLevel        string
	LogJSON         bool
	AMQPURL         string
	EventsExchange  string
	CORSOrigins     []string
	MigrateOnStart  bool
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:           valueOr(getenv("APP_PORT"), "8080"),
		DatabaseURL:    getenv("DATABASE_URL"),
		SessionSecret:  getenv("SESSION_SECRET"),
		LogLevel:       valueOr(getenv("LOG_LEVEL"), "info"),
		AMQPURL:        getenv("AMQP_URL"),
		EventsExchange: valueOr(getenv("EVENTS_EXCHANGE"), "pos.events"),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	var err error
	if cfg.TokenTTL, err = parseDuration(getenv, "TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration(getenv, "SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = parseBool(getenv, "LOG_JSON", true); err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart, err = parseBool(getenv, "MIGRATE_ON_START", true); err != nil {
		return nil, err
	}

	cfg.CORSOrigins = []string{"*"}
	if raw := getenv("CORS_ORIGINS"); raw != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return cfg, nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return b, nil
}
