package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_PORT", "3306")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN, "@tcp(")
	assert.False(t, cfg.RemoteSyncEnabled)
	assert.Greater(t, cfg.JWTExpirationMinutes, 0)
}

func TestLoadConfig_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REMOTE_SYNC_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Contains(t, cfg.Database.DSN, "host=db port=5433")
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.RemoteSyncEnabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"driver", "DB_DRIVER", "oracle"},
		{"redis db", "REDIS_DB", "one"},
		{"jwt expiry", "JWT_EXPIRATION_MINUTES", "soon"},
		{"remote sync", "REMOTE_SYNC_ENABLED", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
