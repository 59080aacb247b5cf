package input

// Action is a digital movement request
type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionBackward
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
)

var actionNames = map[Action]string{
	ActionForward:  "forward",
	ActionBackward: "backward",
	ActionLeft:     "left",
	ActionRight:    "right",
	ActionUp:       "up",
	ActionDown:     "down",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// Bindings maps physical key codes to actions. Several keys may share an action.
type Bindings map[string]Action

// DefaultBindings returns WASD plus arrows, Space for up and Shift for down
func DefaultBindings() Bindings {
	return Bindings{
		"KeyW":       ActionForward,
		"ArrowUp":    ActionForward,
		"KeyS":       ActionBackward,
		"ArrowDown":  ActionBackward,
		"KeyA":       ActionLeft,
		"ArrowLeft":  ActionLeft,
		"KeyD":       ActionRight,
		"ArrowRight": ActionRight,
		"Space":      ActionUp,
		"ShiftLeft":  ActionDown,
		"ShiftRight": ActionDown,
	}
}

// Keys returns the key codes bound to action
func (b Bindings) Keys(action Action) []string {
	var keys []string
	for code, a := range b {
		if a == action {
			keys = append(keys, code)
		}
	}
	return keys
}
