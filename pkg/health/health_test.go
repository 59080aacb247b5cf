package health

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-skyward/pkg/engine"
	"github.com/opd-ai/go-skyward/pkg/logging"
)

// mockCheck implements Check for testing
type mockCheck struct {
	name    string
	healthy bool
}

func (m *mockCheck) Name() string {
	return m.name
}

func (m *mockCheck) Check(ctx context.Context) error {
	if !m.healthy {
		return fmt.Errorf("%s failed", m.name)
	}
	return nil
}

// slowCheck waits for delay or the context, whichever comes first
type slowCheck struct {
	delay time.Duration
}

func (s *slowCheck) Name() string {
	return "slow"
}

func (s *slowCheck) Check(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fakeLoop struct {
	state    engine.State
	degraded []string
}

func (f *fakeLoop) State() engine.State { return f.state }
func (f *fakeLoop) Degraded() []string  { return f.degraded }

func TestChecker_AddRemove(t *testing.T) {
	c := NewChecker()
	check := &mockCheck{name: "test", healthy: true}
	c.AddCheck(check)

	if c.checks["test"] != check {
		t.Error("Check not properly stored")
	}

	c.AddCheck(&mockCheck{name: "test", healthy: false})
	if len(c.checks) != 1 {
		t.Errorf("Expected same-name check to be replaced, got %d checks", len(c.checks))
	}

	c.RemoveCheck("test")
	if len(c.checks) != 0 {
		t.Errorf("Expected 0 checks after removal, got %d", len(c.checks))
	}
}

func TestChecker_Run(t *testing.T) {
	tests := []struct {
		name     string
		checks   []*mockCheck
		expected string
	}{
		{
			name:     "no checks - healthy",
			expected: StatusHealthy,
		},
		{
			name: "all healthy",
			checks: []*mockCheck{
				{name: "check1", healthy: true},
				{name: "check2", healthy: true},
			},
			expected: StatusHealthy,
		},
		{
			name: "one unhealthy",
			checks: []*mockCheck{
				{name: "check1", healthy: true},
				{name: "check2", healthy: false},
			},
			expected: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for _, check := range tt.checks {
				c.AddCheck(check)
			}

			report := c.Run(context.Background())
			if report.Status != tt.expected {
				t.Errorf("Expected status %s, got %s", tt.expected, report.Status)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Errorf("Expected %d check results, got %d", len(tt.checks), len(report.Checks))
			}

			for _, check := range tt.checks {
				result, ok := report.Checks[check.name]
				if !ok {
					t.Errorf("Check result for %s not found", check.name)
					continue
				}
				if check.healthy != (result.Status == StatusHealthy) {
					t.Errorf("Check %s: unexpected status %s", check.name, result.Status)
				}
				if !check.healthy && result.Message == "" {
					t.Errorf("Check %s: expected a failure message", check.name)
				}
			}
		})
	}
}

func TestChecker_RunRespectsContext(t *testing.T) {
	c := NewChecker()
	c.AddCheck(&slowCheck{delay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	report := c.Run(ctx)
	if report.Healthy() {
		t.Error("Expected unhealthy report after timeout")
	}
}

func TestChecker_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithWriter(&buf)

	c := NewChecker()
	c.AddCheck(&mockCheck{name: "ok", healthy: true})
	c.AddCheck(&mockCheck{name: "broken", healthy: false})

	report := c.Log(context.Background(), logger)
	if report.Healthy() {
		t.Fatal("Expected unhealthy report")
	}

	out := buf.String()
	if !strings.Contains(out, "Health check failed") {
		t.Errorf("Expected failure message in log, got %q", out)
	}
	if !strings.Contains(out, `"broken":"broken failed"`) {
		t.Errorf("Expected failing check attribute in log, got %q", out)
	}
	if strings.Contains(out, `"ok":`) {
		t.Errorf("Passing checks should not be listed, got %q", out)
	}
}

func TestLoopCheck(t *testing.T) {
	tests := []struct {
		name    string
		loop    fakeLoop
		wantErr string
	}{
		{name: "running", loop: fakeLoop{state: engine.StateRunning}},
		{name: "paused", loop: fakeLoop{state: engine.StatePaused}},
		{name: "uninitialized", loop: fakeLoop{state: engine.StateUninitialized}, wantErr: "uninitialized"},
		{name: "disposed", loop: fakeLoop{state: engine.StateDisposed}, wantErr: "disposed"},
		{
			name:    "degraded",
			loop:    fakeLoop{state: engine.StateRunning, degraded: []string{"audio", "cloaking"}},
			wantErr: "audio, cloaking",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewLoopCheck(&tt.loop)
			if check.Name() != "simulation_loop" {
				t.Errorf("Expected name simulation_loop, got %s", check.Name())
			}

			err := check.Check(context.Background())
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMemoryCheck(t *testing.T) {
	tests := []struct {
		name    string
		usage   int64
		max     int64
		healthy bool
	}{
		{name: "under limit", usage: 100, max: 500, healthy: true},
		{name: "at limit", usage: 500, max: 500, healthy: true},
		{name: "over limit", usage: 600, max: 500, healthy: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usage := tt.usage
			check := NewMemoryCheck(tt.max, func() int64 { return usage })
			err := check.Check(context.Background())
			if tt.healthy && err != nil {
				t.Errorf("Expected healthy, got %v", err)
			}
			if !tt.healthy && err == nil {
				t.Error("Expected memory error")
			}
		})
	}
}

func TestMemoryCheck_DefaultReadsHeap(t *testing.T) {
	check := NewMemoryCheck(1<<20, nil)
	if err := check.Check(context.Background()); err != nil {
		t.Errorf("Expected the test process to fit in 1TB, got %v", err)
	}
	if HeapMB() < 0 {
		t.Error("Heap usage should not be negative")
	}
}
