// pkg/render/engo/input.go
package engo

import (
	"context"
	"sort"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-skyward/pkg/input"
	"github.com/opd-ai/go-skyward/pkg/logging"
	"github.com/opd-ai/go-skyward/pkg/render"
)

// Command button names
const (
	buttonPause   = "pause"
	buttonSystem1 = "system1"
	buttonSystem2 = "system2"
	buttonSystem3 = "system3"
	buttonNext    = "next"
	buttonStart   = "start"
	buttonQuit    = "quit"
)

var systemButtons = []string{buttonSystem1, buttonSystem2, buttonSystem3}

// zoomPerScroll is the radar scale change for one wheel notch
const zoomPerScroll = 0.1

// engoKeys maps the key codes used by input.Bindings to engo keys
var engoKeys = map[string]engo.Key{
	"KeyW":       engo.KeyW,
	"KeyA":       engo.KeyA,
	"KeyS":       engo.KeyS,
	"KeyD":       engo.KeyD,
	"KeyC":       engo.KeyC,
	"ArrowUp":    engo.KeyArrowUp,
	"ArrowDown":  engo.KeyArrowDown,
	"ArrowLeft":  engo.KeyArrowLeft,
	"ArrowRight": engo.KeyArrowRight,
	"Space":      engo.KeySpace,
	"ShiftLeft":  engo.KeyLeftShift,
	"ShiftRight": engo.KeyRightShift,
}

// PointerAction is what the primary pointer did this frame
type PointerAction int

const (
	PointerIdle PointerAction = iota
	PointerPress
	PointerMove
	PointerRelease
)

// Devices reads the window's keyboard and pointer state for one frame
type Devices interface {
	Down(button string) bool
	JustPressed(button string) bool
	Pointer() (x, y float32, action PointerAction)
	Scroll() float32
}

// engoDevices reads engo.Input
type engoDevices struct{}

func (engoDevices) Down(button string) bool        { return engo.Input.Button(button).Down() }
func (engoDevices) JustPressed(button string) bool { return engo.Input.Button(button).JustPressed() }
func (engoDevices) Scroll() float32                { return engo.Input.Mouse.ScrollY }

func (engoDevices) Pointer() (float32, float32, PointerAction) {
	m := engo.Input.Mouse
	action := PointerIdle
	switch m.Action {
	case engo.Press:
		if m.Button == engo.MouseButtonLeft {
			action = PointerPress
		}
	case engo.Release:
		action = PointerRelease
	case engo.Move:
		action = PointerMove
	}
	return m.X, m.Y, action
}

// RegisterButtons registers one engo button per bound key code, named after
// the code, plus the command buttons. Codes without an engo key are skipped.
func RegisterButtons(bindings input.Bindings) {
	for code := range bindings {
		if key, ok := engoKeys[code]; ok {
			engo.Input.RegisterButton(code, key)
		}
	}

	engo.Input.RegisterButton(buttonPause, engo.KeyP)
	engo.Input.RegisterButton(buttonSystem1, engo.KeyOne)
	engo.Input.RegisterButton(buttonSystem2, engo.KeyTwo)
	engo.Input.RegisterButton(buttonSystem3, engo.KeyThree)
	engo.Input.RegisterButton(buttonNext, engo.KeyM)
	engo.Input.RegisterButton(buttonStart, engo.KeyEnter)
	engo.Input.RegisterButton(buttonQuit, engo.KeyEscape, engo.KeyQ)
}

// InputSystem turns window input into mailbox events and menu commands.
// Unlike a terminal, the window reports real key releases, so held keys
// are tracked by edge detection on the button state.
type InputSystem struct {
	devices  Devices
	mailbox  *input.Mailbox
	commands *render.Commands
	radar    *render.Radar
	logger   *logging.Logger
	quit     func()

	codes       []string
	held        map[string]bool
	pointerDown bool
}

// InputOption configures an InputSystem
type InputOption func(*InputSystem)

// WithDevices replaces engo.Input as the source of button state
func WithDevices(d Devices) InputOption {
	return func(is *InputSystem) { is.devices = d }
}

// WithQuit replaces engo.Exit as the quit action
func WithQuit(fn func()) InputOption {
	return func(is *InputSystem) { is.quit = fn }
}

// WithRadar lets the scroll wheel zoom radar
func WithRadar(radar *render.Radar) InputOption {
	return func(is *InputSystem) { is.radar = radar }
}

// WithInputLogger sets the logger for refused commands
func WithInputLogger(l *logging.Logger) InputOption {
	return func(is *InputSystem) { is.logger = l }
}

// NewInputSystem creates an input system for the codes bound in bindings
func NewInputSystem(mailbox *input.Mailbox, commands *render.Commands, bindings input.Bindings, opts ...InputOption) *InputSystem {
	is := &InputSystem{
		devices:  engoDevices{},
		mailbox:  mailbox,
		commands: commands,
		quit:     engo.Exit,
		held:     make(map[string]bool),
	}
	for code := range bindings {
		if _, ok := engoKeys[code]; ok {
			is.codes = append(is.codes, code)
		}
	}
	sort.Strings(is.codes)

	for _, opt := range opts {
		opt(is)
	}
	if is.logger == nil {
		is.logger = logging.NewLogger()
	}
	return is
}

// Update satisfies the ecs.System interface
func (is *InputSystem) Update(dt float32) {
	is.handleKeys()
	is.handlePointer()
	is.handleCommands()

	if is.radar != nil {
		if scroll := is.devices.Scroll(); scroll != 0 {
			is.radar.Zoom(1 - float64(scroll)*zoomPerScroll)
		}
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

func (is *InputSystem) handleKeys() {
	for _, code := range is.codes {
		down := is.devices.Down(code)
		if down == is.held[code] {
			continue
		}
		is.held[code] = down
		if down {
			is.mailbox.KeyDown(code)
		} else {
			is.mailbox.KeyUp(code)
		}
	}
}

func (is *InputSystem) handlePointer() {
	x, y, action := is.devices.Pointer()
	switch action {
	case PointerPress:
		if !is.pointerDown {
			is.pointerDown = true
			is.mailbox.ContactStart(float64(x), float64(y))
		}
	case PointerMove:
		if is.pointerDown {
			is.mailbox.ContactMove(float64(x), float64(y))
		}
	case PointerRelease:
		if is.pointerDown {
			is.pointerDown = false
			is.mailbox.ContactEnd()
		}
	}
}

func (is *InputSystem) handleCommands() {
	ctx := context.Background()

	if is.devices.JustPressed(buttonPause) {
		is.commands.TogglePause()
	}
	for i, button := range systemButtons {
		if !is.devices.JustPressed(button) {
			continue
		}
		if err := is.commands.ToggleSystemAt(i); err != nil {
			is.logger.Warn(ctx, "System toggle refused", "button", button, "error", err.Error())
		}
	}
	if is.devices.JustPressed(buttonNext) {
		is.commands.SelectNext()
	}
	if is.devices.JustPressed(buttonStart) {
		if err := is.commands.StartSelected(); err != nil {
			is.logger.Warn(ctx, "Mission start refused", "mission", is.commands.Selected(), "error", err.Error())
		}
	}
	if is.devices.JustPressed(buttonQuit) {
		is.quit()
	}
}
