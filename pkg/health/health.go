// Package health aggregates component checks for a running session. Hosts
// run the checks when a session ends and log the report, so a degraded
// effect module or a stuck goroutine shows up next to the flight summary.
package health

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/opd-ai/go-skyward/pkg/engine"
	"github.com/opd-ai/go-skyward/pkg/logging"
)

// Status values
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Check is one component's health check
type Check interface {
	// Name returns the unique name of this check
	Name() string
	// Check returns an error if the component is unhealthy
	Check(ctx context.Context) error
}

// Report is the aggregated result of every registered check
type Report struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the result of one check
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Healthy reports whether every check passed
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// Checker manages and runs health checks
type Checker struct {
	checks map[string]Check
	mu     sync.RWMutex
}

// NewChecker creates an empty checker
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]Check)}
}

// AddCheck registers a check. A check with the same name is replaced.
func (c *Checker) AddCheck(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[check.Name()] = check
}

// RemoveCheck removes a check by name
func (c *Checker) RemoveCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Run executes every check. The report is healthy only if all checks pass.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	report := Report{
		Status: StatusHealthy,
		Checks: make(map[string]ComponentHealth, len(c.checks)),
	}
	for name, check := range c.checks {
		if err := check.Check(ctx); err != nil {
			report.Status = StatusUnhealthy
			report.Checks[name] = ComponentHealth{Status: StatusUnhealthy, Message: err.Error()}
			continue
		}
		report.Checks[name] = ComponentHealth{Status: StatusHealthy}
	}
	return report
}

// Log runs the checks and logs the report: INFO when healthy, WARN with
// one attribute per failing check otherwise
func (c *Checker) Log(ctx context.Context, logger *logging.Logger) Report {
	report := c.Run(ctx)
	if report.Healthy() {
		logger.Info(ctx, "Health check passed", "checks", len(report.Checks))
		return report
	}

	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	args := []any{"checks", len(report.Checks)}
	for _, name := range names {
		if ch := report.Checks[name]; ch.Status != StatusHealthy {
			args = append(args, name, ch.Message)
		}
	}
	logger.Warn(ctx, "Health check failed", args...)
	return report
}

// LoopSource is the part of the simulation loop a LoopCheck reads
type LoopSource interface {
	State() engine.State
	Degraded() []string
}

// LoopCheck fails when the loop is not live or an effect module is degraded
type LoopCheck struct {
	loop LoopSource
}

// NewLoopCheck creates a check for loop
func NewLoopCheck(loop LoopSource) *LoopCheck {
	return &LoopCheck{loop: loop}
}

// Name returns the name of this check
func (l *LoopCheck) Name() string {
	return "simulation_loop"
}

// Check verifies the loop is initialized and every module is serving
func (l *LoopCheck) Check(ctx context.Context) error {
	switch state := l.loop.State(); state {
	case engine.StateRunning, engine.StatePaused:
	default:
		return fmt.Errorf("simulation loop is %s", state)
	}
	if degraded := l.loop.Degraded(); len(degraded) > 0 {
		return fmt.Errorf("degraded modules: %s", strings.Join(degraded, ", "))
	}
	return nil
}

// MemoryCheck fails when heap usage exceeds a limit
type MemoryCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryCheck creates a memory check. A nil usage function reads the
// Go heap.
func NewMemoryCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryCheck {
	if getMemoryUsage == nil {
		getMemoryUsage = HeapMB
	}
	return &MemoryCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this check
func (m *MemoryCheck) Name() string {
	return "memory"
}

// Check verifies memory usage is within the limit
func (m *MemoryCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// HeapMB returns the allocated heap in megabytes
func HeapMB() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.HeapAlloc / (1024 * 1024))
}
