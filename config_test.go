package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DATABASE_URL", "GO_ENV", "REDIS_ADDR", "JWT_SECRET",
		"CORS_ORIGINS", "RELAY_SEND_BUFFER", "RELAY_NOTIFY_UNDELIVERABLE", "PRESENCE_TTL"} {
		t.Setenv(key, "") // restored after the test
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 16, cfg.RelaySendBuffer)
	assert.False(t, cfg.RelayNotifyUndeliverable)
	assert.Equal(t, 90*time.Second, cfg.PresenceTTL)
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:5173")
	assert.False(t, cfg.development())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("GO_ENV", "development")
	t.Setenv("RELAY_SEND_BUFFER", "4")
	t.Setenv("RELAY_NOTIFY_UNDELIVERABLE", "true")
	t.Setenv("PRESENCE_TTL", "30s")
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.True(t, cfg.development())
	assert.Equal(t, 4, cfg.RelaySendBuffer)
	assert.True(t, cfg.RelayNotifyUndeliverable)
	assert.Equal(t, 30*time.Second, cfg.PresenceTTL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("RELAY_SEND_BUFFER", "lots")
	_, err := loadConfig()
	assert.Error(t, err)
}
