// Package input fuses keyboard, pointer/touch drag and device tilt into a
// single normalized control vector that is sampled once per simulation tick.
package input

import (
	"math"

	"github.com/opd-ai/go-skyward/pkg/physics"
)

// Contact describes the pointer or touch contact seen during the last tick
type Contact struct {
	Active   bool
	Position physics.Vector2D
	Delta    physics.Vector2D
}

// ControlInput is the fused control state for one tick
type ControlInput struct {
	physics.ThrustFlags
	physics.Axes
	Contact Contact
}

// Command strips the contact record and returns what the integrator consumes
func (c ControlInput) Command() physics.Command {
	return physics.Command{ThrustFlags: c.ThrustFlags, Axes: c.Axes}
}

// Orientation is a device orientation sample in degrees
type Orientation struct {
	Alpha float64 // rotation about the screen normal
	Beta  float64 // front-back tilt
	Gamma float64 // left-right tilt
}

func (o Orientation) finite() bool {
	for _, v := range [...]float64{o.Alpha, o.Beta, o.Gamma} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Params are the fusion tunables
type Params struct {
	LookSensitivity float64 // drag pixels to axis units
	TiltDeadband    float64 // degrees of |gamma| below which tilt is ignored
	TiltRollGain    float64
	TiltLookGain    float64
}

// DefaultParams returns the tuned fusion constants
func DefaultParams() Params {
	return Params{
		LookSensitivity: 0.002,
		TiltDeadband:    5,
		TiltRollGain:    0.01,
		TiltLookGain:    0.005,
	}
}
