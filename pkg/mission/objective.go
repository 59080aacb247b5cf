package mission

import "fmt"

// Outcome is the result of evaluating an objective
type Outcome int

const (
	InProgress Outcome = iota
	Completed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Objective ends a mission. A zero field is not checked.
//
// With a target altitude the mission completes when the craft reaches it and
// fails if the time limit runs out first. Without one, outlasting the time
// limit completes it. Dropping below the minimum altitude always fails.
type Objective struct {
	TargetAltitude float64 `yaml:"targetAltitude"`
	MinAltitude    float64 `yaml:"minAltitude"`
	TimeLimit      float64 `yaml:"timeLimit"` // seconds
}

// Status is the objective state reported each tick
type Status struct {
	Outcome   Outcome
	Reason    string
	Remaining float64 // seconds left, 0 without a time limit
}

// Done reports whether the mission has ended either way
func (s Status) Done() bool {
	return s.Outcome != InProgress
}

func (o Objective) validate() error {
	if o.TargetAltitude < 0 {
		return fmt.Errorf("negative target altitude")
	}
	if o.TimeLimit < 0 {
		return fmt.Errorf("negative time limit")
	}
	if o.TargetAltitude > 0 && o.MinAltitude >= o.TargetAltitude {
		return fmt.Errorf("minimum altitude %g is not below target %g", o.MinAltitude, o.TargetAltitude)
	}
	return nil
}

// Evaluate checks the objective against the craft altitude after elapsed
// mission seconds.
func (o Objective) Evaluate(altitude, elapsed float64) Status {
	var remaining float64
	if o.TimeLimit > 0 {
		remaining = max(0, o.TimeLimit-elapsed)
	}

	if altitude < o.MinAltitude {
		return Status{Outcome: Failed, Reason: "below minimum altitude", Remaining: remaining}
	}
	if o.TargetAltitude > 0 && altitude >= o.TargetAltitude {
		return Status{Outcome: Completed, Reason: "target altitude reached", Remaining: remaining}
	}
	if o.TimeLimit > 0 && elapsed >= o.TimeLimit {
		if o.TargetAltitude > 0 {
			return Status{Outcome: Failed, Reason: "time limit exceeded"}
		}
		return Status{Outcome: Completed, Reason: "time limit survived"}
	}
	return Status{Outcome: InProgress, Remaining: remaining}
}
