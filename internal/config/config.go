// Package config resolves process-wide configuration once at startup. The
// resulting Config is passed explicitly into the components that need it;
// nothing reads the environment after initialization.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "APISCOPE_"

// Config holds runtime settings for the apiscope API server.
type Config struct {
	// Addr is the HTTP bind address.
	Addr string
	// DatabaseDSN is the PostgreSQL DSN (pgx). Empty means in-memory stores,
	// which is only useful for local development.
	DatabaseDSN string
	// AuthSecret signs session tokens (HS256).
	AuthSecret string
	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration
	// OutboundTimeout bounds every proxied outbound call.
	OutboundTimeout time.Duration
	// RateBurst / RatePerSec configure the per-IP token bucket.
	RateBurst  int
	RatePerSec int
}

// Load builds a Config from environment variables, applying development
// defaults for everything except the auth secret.
func Load() (Config, error) {
	cfg := Config{
		Addr:            getenv("ADDR", ":8080"),
		DatabaseDSN:     getenv("PG_DSN", ""),
		AuthSecret:      getenv("AUTH_SECRET", ""),
		TokenTTL:        7 * 24 * time.Hour,
		OutboundTimeout: 15 * time.Second,
		RateBurst:       20,
		RatePerSec:      10,
	}

	if cfg.AuthSecret == "" {
		return Config{}, errors.New("config: " + envPrefix + "AUTH_SECRET is required")
	}

	var err error
	if cfg.TokenTTL, err = getenvDuration("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.OutboundTimeout, err = getenvDuration("OUTBOUND_TIMEOUT", cfg.OutboundTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RateBurst, err = getenvInt("RATE_BURST", cfg.RateBurst); err != nil {
		return Config{}, err
	}
	if cfg.RatePerSec, err = getenvInt("RATE_PER_SEC", cfg.RatePerSec); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(envPrefix + key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s%s: %w", envPrefix, key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s%s must be positive", envPrefix, key)
	}
	return d, nil
}

func getenvInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(envPrefix + key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s%s: %w", envPrefix, key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("config: %s%s must be positive", envPrefix, key)
	}
	return v, nil
}
