package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds process configuration, loaded once at startup and passed down
// explicitly. The auth secret is never logged.
type Config struct {
	Addr       string
	PGDSN      string
	AuthSecret string
	TokenTTL   time.Duration
	RateBurst  int
	RatePerSec int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:       getEnv("INKWELL_ADDR", ":8080"),
		PGDSN:      os.Getenv("INKWELL_PG_DSN"),
		AuthSecret: os.Getenv("INKWELL_AUTH_SECRET"),
		TokenTTL:   time.Hour,
		RateBurst:  20,
		RatePerSec: 10,
	}

	if cfg.AuthSecret == "" {
		return nil, errors.New("INKWELL_AUTH_SECRET is required")
	}

	if raw := os.Getenv("INKWELL_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("INKWELL_TOKEN_TTL is not a valid duration: %q", raw)
		}
		cfg.TokenTTL = ttl
	}
	var err error
	if cfg.RateBurst, err = getEnvInt("INKWELL_RATE_BURST", cfg.RateBurst); err != nil {
		return nil, err
	}
	if cfg.RatePerSec, err = getEnvInt("INKWELL_RATE_PER_SEC", cfg.RatePerSec); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %q", key, raw)
	}
	return v, nil
}
