// pkg/resource/health.go
package resource

import (
	"context"
	"fmt"
)

// SupervisorHealthCheck reports on the host's supervised goroutines
type SupervisorHealthCheck struct {
	supervisor *Supervisor
}

// NewSupervisorHealthCheck creates a health check for s
func NewSupervisorHealthCheck(s *Supervisor) *SupervisorHealthCheck {
	return &SupervisorHealthCheck{supervisor: s}
}

// Name returns the name of this health check
func (r *SupervisorHealthCheck) Name() string {
	return "supervisor"
}

// Check fails if a supervised goroutine failed or the goroutine count is
// above 80% of the limit
func (r *SupervisorHealthCheck) Check(ctx context.Context) error {
	if err := r.supervisor.Err(); err != nil {
		return fmt.Errorf("supervised goroutine failed: %w", err)
	}

	count := r.supervisor.GetGoroutineCount()
	threshold := int64(float64(r.supervisor.maxGoroutines) * 0.8)
	if count > threshold {
		return fmt.Errorf("goroutine count %d exceeds 80%% threshold (%d/%d)",
			count, threshold, r.supervisor.maxGoroutines)
	}
	return nil
}
