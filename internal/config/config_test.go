package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APISCOPE_AUTH_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "test-secret", cfg.AuthSecret)
	require.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	require.Equal(t, 15*time.Second, cfg.OutboundTimeout)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("APISCOPE_AUTH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APISCOPE_AUTH_SECRET", "test-secret")
	t.Setenv("APISCOPE_ADDR", ":9999")
	t.Setenv("APISCOPE_TOKEN_TTL", "24h")
	t.Setenv("APISCOPE_OUTBOUND_TIMEOUT", "20s")
	t.Setenv("APISCOPE_RATE_BURST", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, 20*time.Second, cfg.OutboundTimeout)
	require.Equal(t, 5, cfg.RateBurst)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("APISCOPE_AUTH_SECRET", "test-secret")
	t.Setenv("APISCOPE_TOKEN_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}
