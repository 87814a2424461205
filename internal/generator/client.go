package generator

import (
	"context"
	"errors"
	"time"

	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/models"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 1
)

// Options bound a single Generate call.
type Options struct {
	// Timeout applies to each backend attempt separately.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after the first failure.
	MaxRetries int
}

// DefaultOptions returns a 30s timeout with one retry.
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, MaxRetries: DefaultMaxRetries}
}

// Client wraps a Backend with a per-attempt timeout, a bounded retry and
// report parsing. It holds no per-call state and is safe for concurrent use.
type Client struct {
	backend Backend
	opts    Options
	logger  logger.Logger
}

// NewClient creates a Client. A non-positive timeout falls back to
// DefaultTimeout and a negative retry count to zero.
func NewClient(backend Backend, opts Options, l logger.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{backend: backend, opts: opts, logger: logger.OrNop(l)}
}

// Backend returns the wrapped backend.
func (c *Client) Backend() Backend {
	return c.backend
}

// Generate sends prompt and parses the reply. Timeouts, backend failures and
// parse failures are retried with the identical prompt; when every attempt
// fails the most recent error is returned. A *ConfigError or a cancelled
// parent context ends the call immediately.
func (c *Client) Generate(ctx context.Context, prompt string) (models.Report, error) {
	var lastErr error
	attempts := c.opts.MaxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		report, err := c.attempt(ctx, prompt)
		if err == nil {
			c.logger.LogDebug(logger.KV("generation succeeded",
				"backend", c.backend.Name(),
				"attempt", attempt,
				"duration", time.Since(start).Round(time.Millisecond),
				"tasks", report.Tasks.Len()))
			return report, nil
		}
		lastErr = err

		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return models.Report{}, err
		}
		if ctx.Err() != nil {
			return models.Report{}, err
		}

		c.logger.LogWarn(logger.KV("generation attempt failed",
			"backend", c.backend.Name(),
			"attempt", attempt,
			"of", attempts,
			"error", err))
	}
	return models.Report{}, lastErr
}

func (c *Client) attempt(ctx context.Context, prompt string) (models.Report, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	raw, err := c.backend.Generate(attemptCtx, prompt)
	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return models.Report{}, &TimeoutError{After: c.opts.Timeout}
		}
		return models.Report{}, err
	}
	return ParseReport(raw)
}
