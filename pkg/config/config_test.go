package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientConfig_Defaults(t *testing.T) {
	cfg, err := LoadClientConfig()
	require.NoError(t, err)

	assert.Equal(t, "ws://127.0.0.1:3000/ws", cfg.ServerURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "broadside.log", cfg.LogFile)
	assert.Empty(t, cfg.Journal)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.NoError(t, cfg.Validate())
}

func TestLoadClientConfig_Env(t *testing.T) {
	t.Setenv("BROADSIDE_SERVER_URL", "wss://example.com/ws")
	t.Setenv("BROADSIDE_LOG_LEVEL", "debug")
	t.Setenv("BROADSIDE_JOURNAL", "sqlite://journal.db")
	t.Setenv("BROADSIDE_POLL_INTERVAL", "1s")

	cfg, err := LoadClientConfig()
	require.NoError(t, err)

	assert.Equal(t, "wss://example.com/ws", cfg.ServerURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "sqlite://journal.db", cfg.Journal)
	assert.Equal(t, time.Second, cfg.PollInterval)
}

func TestLoadClientConfig_BadDuration(t *testing.T) {
	t.Setenv("BROADSIDE_POLL_INTERVAL", "soon")

	_, err := LoadClientConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestClientConfig_Validate(t *testing.T) {
	valid := ClientConfig{ServerURL: "ws://127.0.0.1:3000/ws", LogLevel: "info", PollInterval: time.Millisecond}

	tests := []struct {
		name   string
		mutate func(*ClientConfig)
	}{
		{name: "http scheme", mutate: func(c *ClientConfig) { c.ServerURL = "http://127.0.0.1:3000/ws" }},
		{name: "unknown log level", mutate: func(c *ClientConfig) { c.LogLevel = "loud" }},
		{name: "zero poll interval", mutate: func(c *ClientConfig) { c.PollInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadReplayConfig(t *testing.T) {
	t.Setenv("BROADSIDE_JOURNAL", "file://journal.zst")
	t.Setenv("BROADSIDE_REPLAY_SESSION", "abc")
	t.Setenv("BROADSIDE_REPLAY_TOKEN", "secret")

	cfg, err := LoadReplayConfig()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Delay)
	assert.Equal(t, "abc", cfg.Session)
	assert.NoError(t, cfg.Validate())

	cfg.Journal = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BROADSIDE_LOG_FILE=from-dotenv.log\n"), 0o644))
	t.Setenv("BROADSIDE_LOG_FILE", "")
	os.Unsetenv("BROADSIDE_LOG_FILE")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	cfg, err := LoadClientConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.log", cfg.LogFile)
}
