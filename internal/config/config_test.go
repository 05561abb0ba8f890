package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/startificial/requireflow/internal/config"
	"github.com/startificial/requireflow/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
listen_addr = ":9090"
database = "/var/lib/requireflow/requireflow.db"
log_level = "debug"
debug = true
session_ttl = 60
cache_ttl = 30
generation_endpoint = "https://llm.internal.example"
generation_model = "gemini-2.5-pro"
generation_attempts = 5
`)
	configPath := filepath.Join(tempDir, "requireflow.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("REQUIREFLOW_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/requireflow/requireflow.db", cfg.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 60, cfg.SessionTTL)
	assert.Equal(t, 30, cfg.CacheTTL)
	assert.Equal(t, "https://llm.internal.example", cfg.GenerationEndpoint)
	assert.Equal(t, "gemini-2.5-pro", cfg.GenerationModel)
	assert.Equal(t, 5, cfg.GenerationAttempts)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REQUIREFLOW_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "requireflow.db", cfg.Database)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 10080, cfg.SessionTTL)
	assert.Equal(t, 300, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.GenerationAttempts)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "requireflow.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("REQUIREFLOW_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
log_level = "invalid"
`)
	configPath := filepath.Join(tempDir, "requireflow.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("REQUIREFLOW_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)

	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeValidation, c.Err.Code)
	assert.Contains(t, c.Err.ValidationErrors(), "log_level")
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv("REQUIREFLOW_CONFIG", "")

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "--log-level", "debug"}

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}
