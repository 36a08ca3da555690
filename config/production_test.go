package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProductionConfig_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", "nonexistent.env")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "applaud", cfg.Database.Name)

	assert.Equal(t, 3000, cfg.Server.Port)

	assert.Equal(t, "redis://localhost:6379", cfg.Queue.RedisURL)
	assert.Equal(t, "applaud:queue", cfg.Queue.KeyPrefix)
	assert.Equal(t, 30*time.Second, cfg.Queue.LeaseTimeout)
	assert.Equal(t, 5*time.Second, cfg.Queue.PollTimeout)

	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Worker.Delay)
	assert.True(t, cfg.Worker.Enabled)
}

func TestLoadProductionConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", "nonexistent.env")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("WORKER_DELAY", "500ms")
	t.Setenv("WORKER_CONCURRENCY", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://applaud.example.com, https://staging.applaud.example.com")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Worker.Delay)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, []string{"https://applaud.example.com", "https://staging.applaud.example.com"}, cfg.Security.AllowedOrigins)
}

func TestValidateProductionConfig(t *testing.T) {
	t.Setenv("ENV_FILE", "nonexistent.env")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	require.NoError(t, ValidateProductionConfig(cfg))

	cfg.Server.Port = 0
	err = ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")

	cfg.Server.Port = 3000
	cfg.Queue.LeaseTimeout = 0
	err = ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUEUE_LEASE_TIMEOUT")

	cfg.Queue.LeaseTimeout = 30 * time.Second
	cfg.Worker.Concurrency = 0
	err = ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKER_CONCURRENCY")

	cfg.Worker.Concurrency = 2
	cfg.Logging.Level = "verbose"
	err = ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}
