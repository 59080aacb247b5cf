// pkg/engine/session.go
package engine

import (
	"github.com/opd-ai/go-skyward/pkg/mission"
	"github.com/opd-ai/go-skyward/pkg/physics"
)

// Mode is what the player is doing in the session
type Mode int

const (
	ModeMenu Mode = iota
	ModePlaying
	ModePaused
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "menu"
	case ModePlaying:
		return "playing"
	case ModePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// SystemFlags are the per-subsystem enabled flags
type SystemFlags struct {
	Propulsion bool
	Cloaking   bool
	Sensors    bool
}

// CraftSnapshot is the public part of the craft state
type CraftSnapshot struct {
	Position physics.Vector3D
	Velocity physics.Vector3D
	Rotation physics.Euler
	Altitude float64
	Speed    float64
	GForce   float64
}

func snapshotCraft(s physics.CraftState) CraftSnapshot {
	return CraftSnapshot{
		Position: s.Position,
		Velocity: s.Velocity,
		Rotation: s.Rotation,
		Altitude: s.Altitude,
		Speed:    s.Speed,
		GForce:   s.GForce,
	}
}

// SessionState is what observers see after every tick. It is a value; the
// loop never hands out a reference to its own copy.
type SessionState struct {
	Mode      Mode
	MissionID string
	Craft     CraftSnapshot
	Systems   SystemFlags
	Tick      uint64
	Elapsed   float64 // seconds flown in the current mission
	Objective mission.Status
}

// SystemsUpdate overlays individual system flags. Nil fields are kept.
type SystemsUpdate struct {
	Propulsion *bool
	Cloaking   *bool
	Sensors    *bool
}

// SessionUpdate is a partial SessionState. Nil fields are kept.
type SessionUpdate struct {
	Mode      *Mode
	MissionID *string
	Craft     *CraftSnapshot
	Systems   *SystemsUpdate
	Tick      *uint64
	Elapsed   *float64
	Objective *mission.Status
}

// Reduce merges u over prev and returns the new state. prev is not modified.
func Reduce(prev SessionState, u SessionUpdate) SessionState {
	next := prev
	if u.Mode != nil {
		next.Mode = *u.Mode
	}
	if u.MissionID != nil {
		next.MissionID = *u.MissionID
	}
	if u.Craft != nil {
		next.Craft = *u.Craft
	}
	if u.Systems != nil {
		next.Systems = reduceSystems(prev.Systems, *u.Systems)
	}
	if u.Tick != nil {
		next.Tick = *u.Tick
	}
	if u.Elapsed != nil {
		next.Elapsed = *u.Elapsed
	}
	if u.Objective != nil {
		next.Objective = *u.Objective
	}
	return next
}

func reduceSystems(prev SystemFlags, u SystemsUpdate) SystemFlags {
	next := prev
	if u.Propulsion != nil {
		next.Propulsion = *u.Propulsion
	}
	if u.Cloaking != nil {
		next.Cloaking = *u.Cloaking
	}
	if u.Sensors != nil {
		next.Sensors = *u.Sensors
	}
	return next
}

func ptr[T any](v T) *T {
	return &v
}
