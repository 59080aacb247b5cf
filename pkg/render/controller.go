package render

import (
	"errors"

	"github.com/opd-ai/go-skyward/pkg/effects"
	"github.com/opd-ai/go-skyward/pkg/engine"
)

// ErrNoMissions is returned when a mission start is requested with an
// empty mission list
var ErrNoMissions = errors.New("no missions loaded")

// Controller is the part of the loop a host drives
type Controller interface {
	Pause()
	Resume()
	SetVisible(visible bool)
	StartMission(id string) error
	ToggleSystem(name string, enabled bool) error
	Snapshot() engine.SessionState
}

// Commands maps the player's menu commands onto a Controller. It keeps the
// mission selection and the last status message. Not safe for concurrent
// use; a host calls it from its event goroutine.
type Commands struct {
	loop     Controller
	missions []string
	selected int
	message  string
}

// NewCommands creates the command set. The first mission is selected.
func NewCommands(loop Controller, missions []string) *Commands {
	return &Commands{loop: loop, missions: missions}
}

// TogglePause pauses a running session and resumes a paused one
func (c *Commands) TogglePause() {
	if c.loop.Snapshot().Mode == engine.ModePaused {
		c.loop.Resume()
		return
	}
	c.loop.Pause()
}

// ToggleSystem flips one subsystem
func (c *Commands) ToggleSystem(name string) error {
	s := c.loop.Snapshot().Systems
	var current bool
	switch name {
	case effects.Propulsion:
		current = s.Propulsion
	case effects.Cloaking:
		current = s.Cloaking
	case effects.Sensors:
		current = s.Sensors
	}

	if err := c.loop.ToggleSystem(name, !current); err != nil {
		c.message = err.Error()
		return err
	}
	c.message = ""
	return nil
}

// ToggleSystemAt flips the subsystem at index i of engine.Systems
func (c *Commands) ToggleSystemAt(i int) error {
	if i < 0 || i >= len(engine.Systems) {
		return engine.ErrUnknownSystem
	}
	return c.ToggleSystem(engine.Systems[i])
}

// SelectNext moves the selection to the next mission, wrapping around
func (c *Commands) SelectNext() {
	if len(c.missions) == 0 {
		return
	}
	c.selected = (c.selected + 1) % len(c.missions)
	c.message = "selected " + c.missions[c.selected]
}

// Selected returns the selected mission id, or "" without missions
func (c *Commands) Selected() string {
	if len(c.missions) == 0 {
		return ""
	}
	return c.missions[c.selected]
}

// StartSelected starts the selected mission
func (c *Commands) StartSelected() error {
	id := c.Selected()
	if id == "" {
		c.message = ErrNoMissions.Error()
		return ErrNoMissions
	}
	if err := c.loop.StartMission(id); err != nil {
		c.message = err.Error()
		return err
	}
	c.message = ""
	return nil
}

// Message returns the status line left by the last command
func (c *Commands) Message() string {
	return c.message
}

// StatusLine is what a host shows under the HUD: the last message, or the
// mission that Enter would start when no mission is being flown
func (c *Commands) StatusLine(s engine.SessionState) string {
	if c.message != "" {
		return c.message
	}
	if id := c.Selected(); id != "" && s.Mode != engine.ModePlaying {
		return "next mission: " + id
	}
	return ""
}
