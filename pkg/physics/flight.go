package physics

import "math"

// FlightParams contains the tunables of the reduced-gravity thrust model.
//
// ThrustForceUnit scales thrust into newtons. The default of 1000 lets up
// thrust beat residual gravity; ThrustForceUnit: 1 gives the literal model,
// where acceleration is BaseThrust/Mass and up thrust alone cannot climb.
type FlightParams struct {
	BaseThrust       float64 // thrust per active flag, in force units
	ThrustForceUnit  float64 // newtons per force unit; mass is in kilograms
	MaxSpeed         float64
	Gravity          float64
	GravityReduction float64 // fraction of gravity cancelled by the anti-gravity drive
	Drag             float64 // velocity multiplier applied once per tick
	Mass             float64
	AngularGain      float64
}

// DefaultFlightParams returns the tuned flight model
func DefaultFlightParams() FlightParams {
	return FlightParams{
		BaseThrust:       500,
		ThrustForceUnit:  1000,
		MaxSpeed:         2000,
		Gravity:          9.81,
		GravityReduction: 0.892,
		Drag:             0.98,
		Mass:             1000,
		AngularGain:      2.0,
	}
}

// InitialPosition is where the craft spawns and where Reset returns it.
var InitialPosition = Vector3D{X: 0, Y: 1000, Z: 0}

// ThrustFlags are the six digital movement requests. Opposite flags cancel.
type ThrustFlags struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Up       bool
	Down     bool
}

// Axes are the continuous look/roll requests, each in [-1, 1]
type Axes struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// Command is everything the integrator needs from the control layer for one tick
type Command struct {
	ThrustFlags
	Axes
}

// CraftState is the kinematic state of the craft. Values of this type are
// always copies; the authoritative instance lives inside FlightDynamics.
type CraftState struct {
	Position        Vector3D
	Velocity        Vector3D
	Acceleration    Vector3D
	Rotation        Euler
	AngularVelocity Vector3D

	Mass             float64
	GravityReduction float64

	Speed    float64
	Altitude float64
	GForce   float64
}

// FlightDynamics owns the craft state and integrates it one tick at a time
type FlightDynamics struct {
	params FlightParams
	state  CraftState
}

// NewFlightDynamics creates the integrator with the craft at its initial state
func NewFlightDynamics(params FlightParams) *FlightDynamics {
	fd := &FlightDynamics{params: params}
	fd.Reset()
	return fd
}

// Params returns the tunables in use
func (fd *FlightDynamics) Params() FlightParams {
	return fd.params
}

// Reset restores the initial craft state. It is idempotent.
func (fd *FlightDynamics) Reset() {
	fd.state = CraftState{
		Position:         InitialPosition,
		Mass:             fd.params.Mass,
		GravityReduction: fd.params.GravityReduction,
		Altitude:         InitialPosition.Y,
		GForce:           1,
	}
}

// Update advances the craft by deltaTime seconds.
//
// Thrust is rotated into the world frame with the rotation from the end of
// the previous tick; the rotation itself is integrated afterwards. Drag is
// applied per call and does not scale with deltaTime.
func (fd *FlightDynamics) Update(deltaTime float64, cmd Command) {
	p := fd.params
	s := &fd.state

	s.Acceleration = Vector3D{}
	s.Acceleration.Y -= p.Gravity * (1 - p.GravityReduction)

	thrust := localThrust(cmd.ThrustFlags, p.BaseThrust)

	s.AngularVelocity = Vector3D{
		X: cmd.Pitch * p.AngularGain,
		Y: cmd.Yaw * p.AngularGain,
		Z: cmd.Roll * p.AngularGain,
	}

	thrust = s.Rotation.Rotate(thrust)
	s.Acceleration = s.Acceleration.Add(thrust.Scale(p.ThrustForceUnit / p.Mass))

	s.Velocity = s.Velocity.Add(s.Acceleration.Scale(deltaTime))
	s.Velocity = s.Velocity.Scale(p.Drag)
	s.Velocity = s.Velocity.ClampLength(p.MaxSpeed)

	s.Position = s.Position.Add(s.Velocity.Scale(deltaTime))
	s.Rotation = s.Rotation.Add(s.AngularVelocity, deltaTime)

	s.Speed = s.Velocity.Length()
	s.Altitude = s.Position.Y
	s.GForce = math.Max(1, s.Acceleration.Length()/p.Gravity)
}

// localThrust builds the body-frame thrust vector. Forward is -Z.
func localThrust(f ThrustFlags, base float64) Vector3D {
	var t Vector3D
	if f.Forward {
		t.Z -= base
	}
	if f.Backward {
		t.Z += base
	}
	if f.Left {
		t.X -= base
	}
	if f.Right {
		t.X += base
	}
	if f.Up {
		t.Y += base
	}
	if f.Down {
		t.Y -= base
	}
	return t
}

// State returns a copy of the full craft state
func (fd *FlightDynamics) State() CraftState {
	return fd.state
}

// Position returns a copy of the craft position
func (fd *FlightDynamics) Position() Vector3D {
	return fd.state.Position
}

// Velocity returns a copy of the craft velocity
func (fd *FlightDynamics) Velocity() Vector3D {
	return fd.state.Velocity
}

// Rotation returns a copy of the craft orientation
func (fd *FlightDynamics) Rotation() Euler {
	return fd.state.Rotation
}

// Speed returns |velocity|
func (fd *FlightDynamics) Speed() float64 {
	return fd.state.Speed
}

// Altitude returns the height above the world origin
func (fd *FlightDynamics) Altitude() float64 {
	return fd.state.Altitude
}

// GForce returns the net acceleration in multiples of gravity, never below 1
func (fd *FlightDynamics) GForce() float64 {
	return fd.state.GForce
}
