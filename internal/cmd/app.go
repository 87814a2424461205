package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/delegate/internal/config"
	"github.com/harrison/delegate/internal/enrich"
	"github.com/harrison/delegate/internal/generator"
	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/notify"
	"github.com/harrison/delegate/internal/orchestrator"
	"github.com/harrison/delegate/internal/prompt"
	"github.com/harrison/delegate/internal/service"
	"github.com/harrison/delegate/internal/store"
)

// addGenerationFlags registers the flags shared by commands that call a backend.
func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "Generation backend: gemini or claude-cli")
	cmd.Flags().String("timeout", "", "Per-attempt timeout (e.g., 30s, 1m)")
	cmd.Flags().Bool("no-repair", false, "Return reports as generated, without the repair pipeline")
	cmd.Flags().Bool("no-enrich", false, "Skip website enrichment")
	cmd.Flags().String("store", "", "Path to the report archive (SQLite)")
}

// loadConfig reads the config file named by --config (or the default),
// applies .env files, environment overrides and CLI flags, then validates.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfig(config.DefaultConfigPath())
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg.ApplyEnv(os.Getenv)

	var f config.FlagOverrides
	f.LogLevel = changedString(cmd, "log-level")
	f.Backend = changedString(cmd, "backend")
	f.StorePath = changedString(cmd, "store")
	f.OutputDir = changedString(cmd, "output-dir")
	f.NoRepair = changedBool(cmd, "no-repair")
	f.NoEnrich = changedBool(cmd, "no-enrich")
	if flag := cmd.Flags().Lookup("concurrency"); flag != nil && flag.Changed {
		n, _ := cmd.Flags().GetInt("concurrency")
		f.Concurrent = &n
	}
	if s := changedString(cmd, "timeout"); s != nil {
		timeout, err := time.ParseDuration(*s)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", *s, err)
		}
		f.Timeout = &timeout
	}
	cfg.MergeWithFlags(f)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func changedString(cmd *cobra.Command, name string) *string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return nil
	}
	v := flag.Value.String()
	return &v
}

func changedBool(cmd *cobra.Command, name string) *bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

// runtime holds the collaborators a generating command needs.
type runtime struct {
	cfg        *config.Config
	console    *logger.ConsoleLogger
	file       *logger.FileLogger
	log        logger.Logger
	store      *store.Store
	supervisor *notify.Supervisor
	webhook    *notify.Webhook
	service    *service.Service
	backend    generator.Backend
}

// newRuntime wires backend, orchestrator, archive and notifier from cfg.
// Callers must Close the result.
func newRuntime(ctx context.Context, cfg *config.Config, out io.Writer) (*runtime, error) {
	rt := &runtime{cfg: cfg, console: logger.NewConsoleLogger(out, cfg.LogLevel)}
	rt.log = rt.console

	if fl, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel); err == nil {
		rt.file = fl
		rt.log = logger.Multi(rt.console, fl)
	} else {
		rt.console.LogWarn(logger.KV("file logging disabled", "dir", cfg.LogDir, "error", err))
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.backend = backend

	st, err := store.NewStore(cfg.StorePath)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open report store: %w", err)
	}
	rt.store = st

	opts := orchestrator.Options{AutoRepair: cfg.AutoRepair}
	if cfg.Enrich {
		opts.Enricher = enrich.NewScraper(cfg.EnrichTimeout, enrich.DefaultMaxContent, rt.log)
	}
	client := generator.NewClient(backend, generator.Options{Timeout: cfg.Timeout, MaxRetries: cfg.MaxRetries}, rt.log)
	orch := orchestrator.New(client, prompt.NewBuilder(rt.log), opts, rt.log)

	svcOpts := service.Options{Archive: st, Backend: backend.Name()}
	if cfg.Notify.WebhookURL != "" {
		rt.supervisor = notify.NewSupervisor(cfg.Notify.Timeout, rt.log)
		rt.webhook = notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
		svcOpts.Supervisor = rt.supervisor
		svcOpts.Notifier = rt.webhook
	}
	rt.service = service.New(orch, svcOpts, rt.log)
	return rt, nil
}

// newBackend builds the configured generation backend.
func newBackend(ctx context.Context, cfg *config.Config) (generator.Backend, error) {
	switch cfg.Backend {
	case config.BackendClaudeCLI:
		return generator.NewClaudeCLIBackend(cfg.Claude.Path), nil
	default:
		key, err := generator.ResolveAPIKey(os.Getenv)
		if err != nil {
			return nil, err
		}
		gemini, err := generator.NewGeminiBackend(ctx, generator.GeminiConfig{
			APIKey:          key,
			Model:           cfg.Gemini.Model,
			BaseURL:         cfg.Gemini.BaseURL,
			Temperature:     cfg.Gemini.Temperature,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		})
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}
}

// Close drains pending notifications and releases resources.
func (rt *runtime) Close() {
	if rt.supervisor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), rt.cfg.Notify.Timeout)
		if err := rt.supervisor.Wait(ctx); err != nil {
			rt.log.LogWarn(logger.KV("pending notifications abandoned", "error", err))
		}
		cancel()
		rt.supervisor.Stop()
	}
	if rt.webhook != nil {
		rt.webhook.Close()
	}
	if rt.store != nil {
		rt.store.Close()
	}
	if rt.file != nil {
		rt.file.Close()
	}
}
