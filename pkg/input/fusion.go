package input

import (
	"context"
	"math"

	"github.com/opd-ai/go-skyward/pkg/logging"
	"github.com/opd-ai/go-skyward/pkg/physics"
)

// Fusion turns raw host events into one ControlInput per tick.
//
// Digital flags are a plain OR over the bound keys. Pitch and yaw come from
// the drag delta of the active contact plus, when tilt is engaged, a small
// contribution from device beta/alpha. Roll comes from tilt only. All three
// axes are clamped to [-1, 1] before they leave the fusion.
type Fusion struct {
	src      Source
	params   Params
	bindings Bindings
	logger   *logging.Logger

	buf  []Event
	held map[string]bool

	contactActive bool
	lastPosition  physics.Vector2D
	delta         physics.Vector2D

	orientation    Orientation
	hasOrientation bool
	tiltEnabled    bool

	state ControlInput
}

// Option configures a Fusion
type Option func(*Fusion)

// WithParams overrides the fusion tunables
func WithParams(p Params) Option {
	return func(f *Fusion) { f.params = p }
}

// WithBindings overrides the key bindings
func WithBindings(b Bindings) Option {
	return func(f *Fusion) { f.bindings = b }
}

// WithLogger sets the logger used for degraded-capability warnings
func WithLogger(l *logging.Logger) Option {
	return func(f *Fusion) { f.logger = l }
}

// New creates a Fusion reading from src. Orientation permission is requested
// here, once. If it is refused or unsupported, tilt stays disabled for the
// life of the Fusion and a warning is logged.
func New(ctx context.Context, src Source, opts ...Option) *Fusion {
	f := &Fusion{
		src:      src,
		params:   DefaultParams(),
		bindings: DefaultBindings(),
		held:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.NewLogger()
	}

	f.tiltEnabled = f.requestTilt(ctx)
	return f
}

func (f *Fusion) requestTilt(ctx context.Context) bool {
	requester, ok := f.src.(PermissionRequester)
	if !ok {
		f.logger.Warn(ctx, "Tilt input disabled", "reason", ErrOrientationUnsupported.Error())
		return false
	}
	if err := requester.RequestOrientationPermission(ctx); err != nil {
		f.logger.Warn(ctx, "Tilt input disabled", "reason", err.Error())
		return false
	}
	return true
}

// TiltEnabled reports whether orientation permission was granted
func (f *Fusion) TiltEnabled() bool {
	return f.tiltEnabled
}

// Update drains pending events and recomputes the control state
func (f *Fusion) Update() {
	f.buf = f.src.Drain(f.buf[:0])
	for _, e := range f.buf {
		f.apply(e)
	}

	var c ControlInput
	c.ThrustFlags = f.flags()
	c.Contact = Contact{
		Active:   f.contactActive,
		Position: f.lastPosition,
		Delta:    f.delta,
	}

	if f.contactActive {
		c.Yaw = -f.delta.X * f.params.LookSensitivity
		c.Pitch = -f.delta.Y * f.params.LookSensitivity
	}

	if f.tiltEngaged() {
		c.Roll = f.orientation.Gamma * f.params.TiltRollGain
		c.Pitch += f.orientation.Beta * f.params.TiltLookGain
		c.Yaw += f.orientation.Alpha * f.params.TiltLookGain
	}

	c.Pitch = physics.ClampUnit(c.Pitch)
	c.Yaw = physics.ClampUnit(c.Yaw)
	c.Roll = physics.ClampUnit(c.Roll)

	f.delta = physics.Vector2D{}
	f.state = c
}

// State returns a copy of the control state computed by the last Update
func (f *Fusion) State() ControlInput {
	return f.state
}

func (f *Fusion) apply(e Event) {
	switch e.Kind {
	case KeyDown:
		f.held[e.Key] = true
	case KeyUp:
		delete(f.held, e.Key)
	case ContactStart:
		f.contactActive = true
		f.lastPosition = e.Position
		f.delta = physics.Vector2D{}
	case ContactMove:
		if !f.contactActive {
			return
		}
		f.delta = f.delta.Add(e.Position.Sub(f.lastPosition))
		f.lastPosition = e.Position
	case ContactEnd:
		f.contactActive = false
		f.delta = physics.Vector2D{}
	case OrientationSample:
		if !e.Orientation.finite() {
			return
		}
		f.orientation = e.Orientation
		f.hasOrientation = true
	}
}

func (f *Fusion) flags() physics.ThrustFlags {
	var flags physics.ThrustFlags
	for key := range f.held {
		switch f.bindings[key] {
		case ActionForward:
			flags.Forward = true
		case ActionBackward:
			flags.Backward = true
		case ActionLeft:
			flags.Left = true
		case ActionRight:
			flags.Right = true
		case ActionUp:
			flags.Up = true
		case ActionDown:
			flags.Down = true
		}
	}
	return flags
}

func (f *Fusion) tiltEngaged() bool {
	return f.tiltEnabled && f.hasOrientation &&
		math.Abs(f.orientation.Gamma) > f.params.TiltDeadband
}
