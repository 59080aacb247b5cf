// pkg/engine/scheduler.go
package engine

import (
	"context"
	"sync"
	"time"
)

// FrameFunc is called once per frame with the host's monotonic clock
type FrameFunc func(now time.Duration)

// Scheduler runs a callback on the host's next frame. A request replaces any
// request that has not run yet.
type Scheduler interface {
	RequestFrame(fn FrameFunc)
}

// ManualScheduler runs frames only when told to. The clock starts at zero.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	pending FrameFunc
}

// NewManualScheduler creates a scheduler driven by Step
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) RequestFrame(fn FrameFunc) {
	m.mu.Lock()
	m.pending = fn
	m.mu.Unlock()
}

// Pending reports whether a frame has been requested
func (m *ManualScheduler) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Now returns the scheduler clock
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Step advances the clock by d and runs the pending frame, if any.
// It reports whether a frame ran.
func (m *ManualScheduler) Step(d time.Duration) bool {
	m.mu.Lock()
	m.now += d
	fn, now := m.pending, m.now
	m.pending = nil
	m.mu.Unlock()

	if fn == nil {
		return false
	}
	fn(now)
	return true
}

// TickerScheduler runs requested frames from a time.Ticker. Run drives it
// and Close stops it.
type TickerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	pending FrameFunc

	done      chan struct{}
	closeOnce sync.Once
}

// NewTickerScheduler creates a scheduler ticking every interval
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	return &TickerScheduler{
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (s *TickerScheduler) RequestFrame(fn FrameFunc) {
	s.mu.Lock()
	s.pending = fn
	s.mu.Unlock()
}

// Run ticks until ctx is cancelled or Close is called
func (s *TickerScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			s.mu.Lock()
			fn := s.pending
			s.pending = nil
			s.mu.Unlock()

			if fn != nil {
				fn(time.Since(start))
			}
		}
	}
}

// Close stops Run. It does not wait, so it is safe to call from a frame.
func (s *TickerScheduler) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
