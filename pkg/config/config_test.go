package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int    `env:"TEST_CFG_PORT" envDefault:"8080"`
	BaseURL  string `env:"TEST_CFG_BASE_URL" envDefault:"http://localhost:8001"`
	LogLevel string `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	Breaker  bool   `env:"TEST_CFG_BREAKER" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:8001", cfg.BaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Breaker)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_BASE_URL", "https://api.daitso.com")
	t.Setenv("TEST_CFG_BREAKER", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://api.daitso.com", cfg.BaseURL)
	assert.True(t, cfg.Breaker)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadDotEnv_MissingFileIsSkipped(t *testing.T) {
	err := LoadDotEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))
	assert.NoError(t, err)
}

func TestLoadDotEnv_FileValuesDoNotOverrideEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "TEST_CFG_DOTENV_ONLY=from-file\nTEST_CFG_LOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TEST_CFG_LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("TEST_CFG_DOTENV_ONLY") })

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-file", os.Getenv("TEST_CFG_DOTENV_ONLY"))
	assert.Equal(t, "warn", os.Getenv("TEST_CFG_LOG_LEVEL"))
}
