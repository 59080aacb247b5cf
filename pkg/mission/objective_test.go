package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjective_Evaluate(t *testing.T) {
	climb := Objective{TargetAltitude: 1500, TimeLimit: 180}
	patrol := Objective{TimeLimit: 60}
	floor := Objective{MinAltitude: 600, TimeLimit: 120}

	tests := []struct {
		name          string
		objective     Objective
		altitude      float64
		elapsed       float64
		wantOutcome   Outcome
		wantRemaining float64
	}{
		{"climb in progress", climb, 1200, 30, InProgress, 150},
		{"climb reached", climb, 1500, 30, Completed, 150},
		{"climb timed out", climb, 1400, 180, Failed, 0},
		{"climb reached at deadline", climb, 1600, 180, Completed, 0},
		{"patrol in progress", patrol, 1000, 59.9, InProgress, 60 - 59.9},
		{"patrol survived", patrol, 1000, 60, Completed, 0},
		{"floor breached", floor, 599, 10, Failed, 110},
		{"floor held", floor, 600, 10, InProgress, 110},
		{"crashed below ground", Objective{}, -1, 5, Failed, 0},
		{"open ended", Objective{}, 1000, 1e6, InProgress, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.objective.Evaluate(tt.altitude, tt.elapsed)
			assert.Equal(t, tt.wantOutcome, got.Outcome)
			assert.InDelta(t, tt.wantRemaining, got.Remaining, 1e-9)
			assert.Equal(t, tt.wantOutcome != InProgress, got.Done())
			if got.Done() {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "in_progress", InProgress.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Outcome(7).String())
}
