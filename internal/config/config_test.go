package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formwizard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.Interactive)
	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
base_url: https://forms.example.com/api/
timeout: 5s
answers_file: answers.yaml
interactive: false
headers:
  X-Token: secret
log:
  level: debug
  json: true
`)

	loader := NewLoader()
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://forms.example.com/api/", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "answers.yaml", cfg.AnswersFile)
	assert.False(t, cfg.Interactive)
	assert.Equal(t, "secret", cfg.Headers["x-token"])
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, path, loader.ConfigFile())
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "base_url: https://file.example.com/\nlog:\n  level: warn\n")
	t.Setenv("FORMWIZARD_BASE_URL", "https://env.example.com/")
	t.Setenv("FORMWIZARD_LOG_LEVEL", "error")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/", cfg.BaseURL)
	assert.Equal(t, slog.LevelError, cfg.Log.SlogLevel())
}

func TestLoader_FlagOverridesEnv(t *testing.T) {
	t.Setenv("FORMWIZARD_TIMEOUT", "10s")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Duration("timeout", 0, "")
	require.NoError(t, flags.Parse([]string{"--timeout=2s"}))

	loader := NewLoader()
	require.NoError(t, loader.BindFlag("timeout", flags.Lookup("timeout")))
	cfg, err := loader.Load(writeConfig(t, "timeout: 1s\n"))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Error(t, loader.BindFlag("missing", flags.Lookup("missing")))
}

func TestLoader_Errors(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = NewLoader().Load(writeConfig(t, "timeout: -1s\n"))
	assert.ErrorIs(t, err, ErrInvalidTimeout)
}

func TestLoader_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Timeout, cfg.Timeout)
	assert.True(t, cfg.Interactive)
}

func TestLogConfig_SlogLevelFallback(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "loud"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "WARN"}.SlogLevel())
}
