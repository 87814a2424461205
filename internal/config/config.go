// Package config loads delegate settings from YAML, .env files, the
// environment and CLI flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendGemini    = "gemini"
	BackendClaudeCLI = "claude-cli"
)

// GeminiConfig configures the Gemini API backend.
type GeminiConfig struct {
	Model           string  `yaml:"model"`
	BaseURL         string  `yaml:"base_url"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// ClaudeConfig configures the claude CLI backend.
type ClaudeConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// NotifyConfig configures the report webhook. An empty URL disables it.
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"-"`
}

// Config represents delegate configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written
	LogDir string `yaml:"log_dir"`

	// Backend selects the generation backend: gemini or claude-cli
	Backend string `yaml:"backend"`

	Gemini GeminiConfig `yaml:"gemini"`
	Claude ClaudeConfig `yaml:"claude"`

	// Timeout bounds each generation attempt
	Timeout time.Duration `yaml:"-"`

	// MaxRetries is the number of retries after a failed attempt
	MaxRetries int `yaml:"max_retries"`

	// AutoRepair runs the repair pipeline on every generated report
	AutoRepair bool `yaml:"auto_repair"`

	// Enrich scrapes the lead's company website before generation
	Enrich bool `yaml:"enrich"`

	// EnrichTimeout bounds the website scrape
	EnrichTimeout time.Duration `yaml:"-"`

	// StorePath is the SQLite report archive
	StorePath string `yaml:"store_path"`

	// OutputDir receives rendered report files
	OutputDir string `yaml:"output_dir"`

	Server ServerConfig `yaml:"server"`
	Notify NotifyConfig `yaml:"notify"`

	// BatchConcurrency is the number of leads generated in parallel by batch
	BatchConcurrency int `yaml:"batch_concurrency"`
}

// DefaultConfig returns a Config with defaults rooted at HomeDir.
func DefaultConfig() *Config {
	home := HomeDir()
	return &Config{
		LogLevel: "info",
		LogDir:   filepath.Join(home, "logs"),
		Backend:  BackendGemini,
		Gemini: GeminiConfig{
			Model:           "gemini-2.5-flash",
			Temperature:     0.6,
			MaxOutputTokens: 4096,
		},
		Claude:           ClaudeConfig{Path: "claude"},
		Timeout:          30 * time.Second,
		MaxRetries:       1,
		AutoRepair:       true,
		Enrich:           true,
		EnrichTimeout:    8 * time.Second,
		StorePath:        filepath.Join(home, "reports.db"),
		OutputDir:        filepath.Join(home, "reports"),
		Server:           ServerConfig{Addr: ":8080"},
		Notify:           NotifyConfig{Timeout: 10 * time.Second},
		BatchConcurrency: 4,
	}
}

// yamlConfig mirrors Config with pointers so that explicit zero values
// (auto_repair: false) are told apart from absent keys.
type yamlConfig struct {
	LogLevel *string `yaml:"log_level"`
	LogDir   *string `yaml:"log_dir"`
	Backend  *string `yaml:"backend"`
	Gemini   *struct {
		Model           *string  `yaml:"model"`
		BaseURL         *string  `yaml:"base_url"`
		Temperature     *float32 `yaml:"temperature"`
		MaxOutputTokens *int32   `yaml:"max_output_tokens"`
	} `yaml:"gemini"`
	Claude *struct {
		Path *string `yaml:"path"`
	} `yaml:"claude"`
	Timeout       *string `yaml:"timeout"`
	MaxRetries    *int    `yaml:"max_retries"`
	AutoRepair    *bool   `yaml:"auto_repair"`
	Enrich        *bool   `yaml:"enrich"`
	EnrichTimeout *string `yaml:"enrich_timeout"`
	StorePath     *string `yaml:"store_path"`
	OutputDir     *string `yaml:"output_dir"`
	Server        *struct {
		Addr *string `yaml:"addr"`
	} `yaml:"server"`
	Notify *struct {
		WebhookURL *string `yaml:"webhook_url"`
		Timeout    *string `yaml:"timeout"`
	} `yaml:"notify"`
	BatchConcurrency *int `yaml:"batch_concurrency"`
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&cfg.LogLevel, y.LogLevel)
	setString(&cfg.LogDir, y.LogDir)
	setString(&cfg.Backend, y.Backend)
	if g := y.Gemini; g != nil {
		setString(&cfg.Gemini.Model, g.Model)
		setString(&cfg.Gemini.BaseURL, g.BaseURL)
		if g.Temperature != nil {
			cfg.Gemini.Temperature = *g.Temperature
		}
		if g.MaxOutputTokens != nil {
			cfg.Gemini.MaxOutputTokens = *g.MaxOutputTokens
		}
	}
	if y.Claude != nil {
		setString(&cfg.Claude.Path, y.Claude.Path)
	}
	if err := setDuration(&cfg.Timeout, y.Timeout, "timeout"); err != nil {
		return nil, err
	}
	if y.MaxRetries != nil {
		cfg.MaxRetries = *y.MaxRetries
	}
	if y.AutoRepair != nil {
		cfg.AutoRepair = *y.AutoRepair
	}
	if y.Enrich != nil {
		cfg.Enrich = *y.Enrich
	}
	if err := setDuration(&cfg.EnrichTimeout, y.EnrichTimeout, "enrich_timeout"); err != nil {
		return nil, err
	}
	setString(&cfg.StorePath, y.StorePath)
	setString(&cfg.OutputDir, y.OutputDir)
	if y.Server != nil {
		setString(&cfg.Server.Addr, y.Server.Addr)
	}
	if n := y.Notify; n != nil {
		setString(&cfg.Notify.WebhookURL, n.WebhookURL)
		if err := setDuration(&cfg.Notify.Timeout, n.Timeout, "notify.timeout"); err != nil {
			return nil, err
		}
	}
	if y.BatchConcurrency != nil {
		cfg.BatchConcurrency = *y.BatchConcurrency
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .delegate/config.yaml in dir.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DefaultHomeDir, "config.yaml"))
}

// LoadEnvFiles loads KEY=value pairs from the given .env files into the
// process environment without overriding variables that are already set.
// Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Environment overrides.
const (
	EnvLogLevel   = "DELEGATE_LOG_LEVEL"
	EnvBackend    = "DELEGATE_BACKEND"
	EnvModel      = "DELEGATE_MODEL"
	EnvStorePath  = "DELEGATE_STORE_PATH"
	EnvWebhookURL = "DELEGATE_WEBHOOK_URL"
	EnvServerAddr = "DELEGATE_ADDR"
)

// ApplyEnv overrides settings from the environment. getenv defaults to os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	for env, target := range map[string]*string{
		EnvLogLevel:   &c.LogLevel,
		EnvBackend:    &c.Backend,
		EnvModel:      &c.Gemini.Model,
		EnvStorePath:  &c.StorePath,
		EnvWebhookURL: &c.Notify.WebhookURL,
		EnvServerAddr: &c.Server.Addr,
	} {
		if v := getenv(env); v != "" {
			*target = v
		}
	}
}

// FlagOverrides holds CLI flag values. Nil fields were not set.
type FlagOverrides struct {
	LogLevel   *string
	Backend    *string
	Timeout    *time.Duration
	NoRepair   *bool
	NoEnrich   *bool
	StorePath  *string
	OutputDir  *string
	Concurrent *int
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.Backend != nil {
		c.Backend = *f.Backend
	}
	if f.Timeout != nil {
		c.Timeout = *f.Timeout
	}
	if f.NoRepair != nil && *f.NoRepair {
		c.AutoRepair = false
	}
	if f.NoEnrich != nil && *f.NoEnrich {
		c.Enrich = false
	}
	if f.StorePath != nil {
		c.StorePath = *f.StorePath
	}
	if f.OutputDir != nil {
		c.OutputDir = *f.OutputDir
	}
	if f.Concurrent != nil {
		c.BatchConcurrency = *f.Concurrent
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}
	if c.Backend != BackendGemini && c.Backend != BackendClaudeCLI {
		return fmt.Errorf("invalid backend %q, must be one of: %s, %s", c.Backend, BackendGemini, BackendClaudeCLI)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.EnrichTimeout <= 0 {
		return fmt.Errorf("enrich_timeout must be > 0, got %v", c.EnrichTimeout)
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("gemini.temperature must be between 0 and 2, got %v", c.Gemini.Temperature)
	}
	if c.Gemini.MaxOutputTokens <= 0 {
		return fmt.Errorf("gemini.max_output_tokens must be > 0, got %d", c.Gemini.MaxOutputTokens)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be >= 1, got %d", c.BatchConcurrency)
	}
	if c.StorePath == "" {
		return fmt.Errorf("store_path cannot be empty")
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, key string) error {
	if v == nil || *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s format %q: %w", key, *v, err)
	}
	*dst = d
	return nil
}
