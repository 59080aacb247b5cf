// Package effects contains the subsystems that react to the craft state each
// tick: propulsion exhaust, the cloaking field, the sensor sweep and the
// engine hum. None of them feed back into the flight model.
package effects

import (
	"context"
	"sync"

	"github.com/opd-ai/go-skyward/pkg/mission"
	"github.com/opd-ai/go-skyward/pkg/physics"
)

// Module names. The first three double as session system names.
const (
	Propulsion = "propulsion"
	Cloaking   = "cloaking"
	Sensors    = "sensors"
	Audio      = "audio"
)

// Module is an effect subsystem driven by the simulation loop.
// Update receives a copy of the craft state and is only called while the
// module is active.
type Module interface {
	Name() string
	Init(ctx context.Context) error
	Update(deltaTime float64, craft physics.CraftState) error
	SetActive(active bool)
	IsActive() bool
	Dispose()
}

// MissionAware modules are told about the mission whenever one starts
type MissionAware interface {
	LoadMission(m mission.Mission)
}

// Pausable modules are told when the loop stops and starts producing ticks
type Pausable interface {
	SetPaused(paused bool)
}

// toggle is the active flag shared by the modules
type toggle struct {
	mu     sync.RWMutex
	active bool
}

func (t *toggle) SetActive(active bool) {
	t.mu.Lock()
	t.active = active
	t.mu.Unlock()
}

func (t *toggle) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}
