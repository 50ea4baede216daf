package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	require.Equal(t, "data/daybook.db", cfg.Database.Path)
	require.Equal(t, 7, cfg.Auth.TokenTTLDays)
	require.Equal(t, "daybook-snapshots", cfg.Storage.KeyPrefix)
	require.Equal(t, 24, cfg.Backup.IntervalHours)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DAYBOOK_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("DAYBOOK_AUTH_JWTSECRET", "env-secret")
	t.Setenv("DAYBOOK_AUTH_TOKENTTLDAYS", "14")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	require.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 14, cfg.Auth.TokenTTLDays)
}
