package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv(EnvHome, "")
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendGemini, cfg.Backend)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.True(t, cfg.AutoRepair)
	assert.True(t, cfg.Enrich)
	assert.Equal(t, 8*time.Second, cfg.EnrichTimeout)
	assert.Equal(t, filepath.Join(".delegate", "reports.db"), cfg.StorePath)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigHonorsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(home, "reports.db"), cfg.StorePath)
	assert.Equal(t, filepath.Join(home, "logs"), cfg.LogDir)
	assert.Equal(t, filepath.Join(home, "config.yaml"), DefaultConfigPath())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
backend: claude-cli
timeout: 45s
max_retries: 2
auto_repair: false
enrich: false
enrich_timeout: 3s
gemini:
  model: gemini-2.5-pro
  temperature: 0.2
claude:
  path: /usr/local/bin/claude
server:
  addr: 127.0.0.1:9000
notify:
  webhook_url: https://hooks.example.com/x
  timeout: 2s
batch_concurrency: 8
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BackendClaudeCLI, cfg.Backend)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.False(t, cfg.AutoRepair)
	assert.False(t, cfg.Enrich)
	assert.Equal(t, 3*time.Second, cfg.EnrichTimeout)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.InDelta(t, 0.2, cfg.Gemini.Temperature, 0.0001)
	assert.Equal(t, int32(4096), cfg.Gemini.MaxOutputTokens, "unset nested key keeps default")
	assert.Equal(t, "/usr/local/bin/claude", cfg.Claude.Path)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "https://hooks.example.com/x", cfg.Notify.WebhookURL)
	assert.Equal(t, 2*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, 8, cfg.BatchConcurrency)
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "log_level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.AutoRepair)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed yaml", "log_level: [unclosed", "failed to parse config file"},
		{"bad timeout", "timeout: soon", "invalid timeout format"},
		{"bad notify timeout", "notify:\n  timeout: 5 minutes", "invalid notify.timeout format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".delegate"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".delegate", "config.yaml"), []byte("max_retries: 0\n"), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxRetries)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"backend", func(c *Config) { c.Backend = "openai" }, "invalid backend"},
		{"timeout", func(c *Config) { c.Timeout = 0 }, "timeout must be > 0"},
		{"retries", func(c *Config) { c.MaxRetries = -1 }, "max_retries"},
		{"enrich timeout", func(c *Config) { c.EnrichTimeout = -time.Second }, "enrich_timeout"},
		{"temperature", func(c *Config) { c.Gemini.Temperature = 3 }, "gemini.temperature"},
		{"tokens", func(c *Config) { c.Gemini.MaxOutputTokens = 0 }, "gemini.max_output_tokens"},
		{"concurrency", func(c *Config) { c.BatchConcurrency = 0 }, "batch_concurrency"},
		{"store path", func(c *Config) { c.StorePath = "" }, "store_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	level := "trace"
	timeout := 5 * time.Second
	noRepair := true
	noEnrich := false
	n := 2

	cfg.MergeWithFlags(FlagOverrides{
		LogLevel:   &level,
		Timeout:    &timeout,
		NoRepair:   &noRepair,
		NoEnrich:   &noEnrich,
		Concurrent: &n,
	})

	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.AutoRepair)
	assert.True(t, cfg.Enrich, "false flag leaves setting alone")
	assert.Equal(t, 2, cfg.BatchConcurrency)
	assert.Equal(t, BackendGemini, cfg.Backend, "nil flag leaves setting alone")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvBackend:    "claude-cli",
		EnvWebhookURL: "https://hooks.example.com/y",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, BackendClaudeCLI, cfg.Backend)
	assert.Equal(t, "https://hooks.example.com/y", cfg.Notify.WebhookURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DELEGATE_TEST_KEY=from-file\nDELEGATE_TEST_SET=from-file\n"), 0644))
	t.Setenv("DELEGATE_TEST_SET", "from-env")
	t.Setenv("DELEGATE_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("DELEGATE_TEST_KEY"))

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "missing.env"), path))

	assert.Equal(t, "from-file", os.Getenv("DELEGATE_TEST_KEY"))
	assert.Equal(t, "from-env", os.Getenv("DELEGATE_TEST_SET"))
}

func TestEnsureHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested", "home")
	t.Setenv(EnvHome, home)

	got, err := EnsureHome()
	require.NoError(t, err)
	assert.Equal(t, home, got)
	assert.DirExists(t, home)
}
