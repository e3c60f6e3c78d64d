package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		GoEnv:             "development",
		HTTPPort:          8084,
		StorageDriver:     DriverMemory,
		PollInterval:      5 * time.Second,
		DesktopPermission: "default",
		JWTSecret:         strings.Repeat("s", 32),
		CreateRateLimit:   10,
		CreateRateBurst:   20,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("k", 40))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8084, cfg.HTTPPort)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, "default", cfg.DesktopPermission)
	assert.False(t, cfg.SoundEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("k", 40))
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("POLL_INTERVAL", "750ms")
	t.Setenv("SOUND_ENABLED", "true")
	t.Setenv("CREATE_RATE_LIMIT", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, cfg.StorageDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.PollInterval)
	assert.True(t, cfg.SoundEnabled)
	assert.Equal(t, 2.5, cfg.CreateRateLimit)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("k", 40))
	t.Setenv("POLL_INTERVAL", "soon")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "POLL_INTERVAL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.HTTPPort = 0 }, wantErr: "HTTP_PORT"},
		{name: "bad udp port", mutate: func(c *Config) { c.UDPPort = 70000 }, wantErr: "UDP_PORT"},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "etcd" }, wantErr: "STORAGE_DRIVER"},
		{name: "postgres without url", mutate: func(c *Config) { c.StorageDriver = DriverPostgres }, wantErr: "DATABASE_URL"},
		{name: "bad permission", mutate: func(c *Config) { c.DesktopPermission = "ask" }, wantErr: "DESKTOP_PERMISSION"},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }, wantErr: "JWT_SECRET"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LOG_FORMAT"},
		{name: "zero poll", mutate: func(c *Config) { c.PollInterval = 0 }, wantErr: "POLL_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	cfg := validConfig()
	var buf bytes.Buffer

	logger := cfg.newLogger(&buf)
	logger.Debug("hidden")
	logger.Info("visible", "user_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"visible"`)
	assert.Contains(t, out, `"user_id":7`)
}
