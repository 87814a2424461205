// Package notify runs best-effort side effects after a report is produced.
// Failures are logged and never reach the caller that scheduled them.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harrison/delegate/internal/logger"
)

// DefaultTaskTimeout bounds a single background task.
const DefaultTaskTimeout = 10 * time.Second

// Supervisor owns fire-and-forget goroutines. Tasks get a context that
// outlives the request that scheduled them and is cancelled by Stop.
type Supervisor struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  logger.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewSupervisor creates a Supervisor. A non-positive timeout uses DefaultTaskTimeout.
func NewSupervisor(timeout time.Duration, l logger.Logger) *Supervisor {
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{ctx: ctx, cancel: cancel, timeout: timeout, logger: logger.OrNop(l)}
}

// Go runs fn in the background. Errors and panics are logged. After Stop,
// Go drops the task and returns false.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.logger.LogWarn(logger.KV("supervisor stopped, dropping task", "task", name))
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		if err := s.run(ctx, fn); err != nil {
			s.logger.LogWarn(logger.KV("background task failed", "task", name, "error", err))
			return
		}
		s.logger.LogDebug(logger.KV("background task done", "task", name))
	}()
	return true
}

func (s *Supervisor) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Wait blocks until every scheduled task has finished or ctx is done.
func (s *Supervisor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop rejects new tasks, cancels running ones and waits for them to return.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}
