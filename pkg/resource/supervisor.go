// pkg/resource/supervisor.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-skyward/pkg/config"
	"github.com/opd-ai/go-skyward/pkg/logging"
)

// ErrShuttingDown is returned by StartGoroutine after Shutdown was called
var ErrShuttingDown = errors.New("supervisor shutting down")

// Supervisor runs the host's background goroutines (frame ticker, input
// polling, signal handling) under one context. A goroutine that fails or
// panics cancels that context so the rest wind down with it.
type Supervisor struct {
	maxGoroutines   int64
	shutdownTimeout time.Duration

	goroutineCount int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *logging.Logger

	mu       sync.Mutex
	stopping bool
	err      error
}

// NewSupervisor creates a supervisor whose context derives from parent
func NewSupervisor(parent context.Context, cfg *config.EnvironmentConfig, logger *logging.Logger) *Supervisor {
	if logger == nil {
		logger = logging.NewLogger()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{
		maxGoroutines:   int64(cfg.MaxGoroutines),
		shutdownTimeout: cfg.ShutdownTimeout,
		ctx:             ctx,
		cancel:          cancel,
		logger:          logger,
	}
}

// Context is cancelled when Shutdown is called or a goroutine fails
func (s *Supervisor) Context() context.Context {
	return s.ctx
}

// StartGoroutine runs fn on a tracked goroutine. It returns an error if the
// goroutine limit would be exceeded or the supervisor is shutting down.
func (s *Supervisor) StartGoroutine(name string, fn func(context.Context) error) error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return ErrShuttingDown
	}
	current := atomic.LoadInt64(&s.goroutineCount)
	if current >= s.maxGoroutines {
		s.mu.Unlock()
		s.logger.Warn(s.ctx, "Goroutine limit exceeded",
			"current", current,
			"limit", s.maxGoroutines,
			"name", name,
		)
		return fmt.Errorf("goroutine limit exceeded: %d/%d", current, s.maxGoroutines)
	}
	atomic.AddInt64(&s.goroutineCount, 1)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer atomic.AddInt64(&s.goroutineCount, -1)

		defer func() {
			if r := recover(); r != nil {
				s.fail(name, fmt.Errorf("panic: %v", r))
			}
		}()

		if err := fn(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.fail(name, err)
		}
	}()

	return nil
}

func (s *Supervisor) fail(name string, err error) {
	s.logger.Error(s.ctx, "Supervised goroutine failed", err, "name", name)

	s.mu.Lock()
	if s.err == nil {
		s.err = fmt.Errorf("%s: %w", name, err)
	}
	s.mu.Unlock()
	s.cancel()
}

// Err returns the first goroutine failure, if any
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// GetGoroutineCount returns the current number of tracked goroutines
func (s *Supervisor) GetGoroutineCount() int64 {
	return atomic.LoadInt64(&s.goroutineCount)
}

// Shutdown cancels the supervisor context and waits for every tracked
// goroutine to return, up to the configured shutdown timeout.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	s.logger.Info(ctx, "Shutting down supervisor", "goroutines", s.GetGoroutineCount())
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	select {
	case <-done:
		s.logger.Info(ctx, "All tracked goroutines finished")
		return nil
	case <-shutdownCtx.Done():
		remaining := s.GetGoroutineCount()
		s.logger.Warn(ctx, "Shutdown timeout exceeded with goroutines still running",
			"remaining", remaining,
		)
		return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
	}
}
