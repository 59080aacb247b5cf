// pkg/render/renderer.go
package render

import (
	"context"
	"sync"

	"github.com/opd-ai/go-skyward/pkg/engine"
	"github.com/opd-ai/go-skyward/pkg/logging"
)

// defaultLogEvery is how many ticks pass between two debug summaries.
const defaultLogEvery = 60

// LogObserver is the presentation used when there is nothing to draw on.
// It logs a flight summary every few ticks and every change of mode,
// mission or objective outcome.
type LogObserver struct {
	logger *logging.Logger
	every  uint64

	mu      sync.Mutex
	last    engine.SessionState
	seen    bool
	summary uint64
}

// NewLogObserver creates a LogObserver that summarises every n ticks.
// n == 0 selects the default.
func NewLogObserver(logger *logging.Logger, n uint64) *LogObserver {
	if logger == nil {
		logger = logging.NewLogger()
	}
	if n == 0 {
		n = defaultLogEvery
	}
	return &LogObserver{logger: logger, every: n}
}

// Observe implements engine.Observer
func (o *LogObserver) Observe(s engine.SessionState) {
	ctx := context.Background()

	o.mu.Lock()
	prev, seen := o.last, o.seen
	o.last, o.seen = s, true
	due := s.Tick > 0 && s.Tick/o.every != o.summary
	if due {
		o.summary = s.Tick / o.every
	}
	o.mu.Unlock()

	if !seen || prev.Mode != s.Mode || prev.MissionID != s.MissionID {
		o.logger.Info(ctx, "Session changed",
			"mode", s.Mode.String(),
			"mission", s.MissionID,
			"tick", s.Tick,
		)
	}
	if seen && prev.Objective.Outcome != s.Objective.Outcome {
		o.logger.Info(ctx, "Objective "+s.Objective.Outcome.String(),
			"mission", s.MissionID,
			"reason", s.Objective.Reason,
			"elapsed", s.Elapsed,
		)
	}
	if due {
		o.logger.Debug(ctx, "Flight summary",
			"tick", s.Tick,
			"altitude", s.Craft.Altitude,
			"speed", s.Craft.Speed,
			"g_force", s.Craft.GForce,
			"propulsion", s.Systems.Propulsion,
			"cloaking", s.Systems.Cloaking,
			"sensors", s.Systems.Sensors,
		)
	}
}

// Last returns the most recent snapshot observed
func (o *LogObserver) Last() (engine.SessionState, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last, o.seen
}
