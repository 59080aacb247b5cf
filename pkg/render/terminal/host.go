// Package terminal runs the simulation in a text terminal. It draws the HUD
// and radar with tcell and feeds key, mouse and focus events back into the
// input mailbox and the loop.
package terminal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-skyward/pkg/engine"
	"github.com/opd-ai/go-skyward/pkg/input"
	"github.com/opd-ai/go-skyward/pkg/logging"
	"github.com/opd-ai/go-skyward/pkg/physics"
	"github.com/opd-ai/go-skyward/pkg/render"
)

// Key-up synthesis. A held key auto-repeats; the first repeat arrives only
// after the keyboard delay, later ones much faster.
const (
	DefaultFirstHold  = 600 * time.Millisecond
	DefaultRepeatHold = 150 * time.Millisecond

	redrawInterval = 33 * time.Millisecond
	radarWidth     = 41
	radarHeight    = 21
	radarScale     = 100.0 // metres per cell
	zoomStep       = 1.25
	helpLine       = "wasd/arrows move  space up  c down  drag look  p pause  1-3 systems  m next  enter start  +/- zoom  q quit"
)

var (
	styleDefault = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleHeader  = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleBorder  = styleDefault.Foreground(tcell.ColorDarkGray)
	styleCraft   = styleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleContact = styleDefault.Foreground(tcell.ColorYellow)
	styleMessage = styleDefault.Foreground(tcell.ColorOrangeRed)
	styleHelp    = styleDefault.Foreground(tcell.ColorGray)
	stylePaused  = styleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

type heldKey struct {
	last     time.Time
	repeated bool
}

// Host owns the terminal for the life of a session
type Host struct {
	screen      tcell.Screen
	loop        render.Controller
	mailbox     *input.Mailbox
	commands    *render.Commands
	instruments render.Instruments
	logger      *logging.Logger

	now        func() time.Time
	firstHold  time.Duration
	repeatHold time.Duration
	cellSize   physics.Vector2D

	radar       *render.Radar
	held        map[string]heldKey
	pointerDown bool

	mu     sync.Mutex
	latest engine.SessionState
	dirty  bool
}

// Option configures a Host
type Option func(*Host)

// WithInstruments sets the effect modules shown on the HUD
func WithInstruments(in render.Instruments) Option {
	return func(h *Host) { h.instruments = in }
}

// WithLogger sets the logger. It should not write to the terminal.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithClock replaces time.Now for key-up synthesis
func WithClock(now func() time.Time) Option {
	return func(h *Host) { h.now = now }
}

// WithHoldTimeouts overrides how long a key counts as held without a repeat
func WithHoldTimeouts(first, repeat time.Duration) Option {
	return func(h *Host) {
		h.firstHold = first
		h.repeatHold = repeat
	}
}

// NewHost creates a terminal host. missions is the list the m key cycles
// through; the first entry is selected initially.
func NewHost(screen tcell.Screen, loop render.Controller, mailbox *input.Mailbox, missions []string, opts ...Option) *Host {
	h := &Host{
		screen:     screen,
		loop:       loop,
		mailbox:    mailbox,
		commands:   render.NewCommands(loop, missions),
		now:        time.Now,
		firstHold:  DefaultFirstHold,
		repeatHold: DefaultRepeatHold,
		// roughly the pixel size of a terminal cell, so drag look feels the
		// same as with a real pointer
		cellSize: physics.Vector2D{X: 8, Y: 16},
		radar:    render.NewRadar(radarWidth, radarHeight, radarScale),
		held:     make(map[string]heldKey),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logging.NewLogger()
	}
	return h
}

// Observe implements engine.Observer. Drawing happens on the Run goroutine.
func (h *Host) Observe(s engine.SessionState) {
	h.mu.Lock()
	h.latest = s
	h.dirty = true
	h.mu.Unlock()
}

// Run initializes the screen and processes events until the user quits or
// ctx is cancelled. The screen is restored before Run returns.
func (h *Host) Run(ctx context.Context) error {
	if err := h.screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer h.screen.Fini()

	h.screen.SetStyle(styleDefault)
	h.screen.EnableMouse()
	h.screen.EnableFocus()
	h.screen.HideCursor()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	h.draw(h.loop.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !h.handleEvent(ev) {
				h.logger.Info(ctx, "Terminal host quit requested")
				return nil
			}
		case <-ticker.C:
			h.releaseStale()
			if s, ok := h.takeDirty(); ok {
				h.draw(s)
			}
		}
	}
}

func (h *Host) takeDirty() (engine.SessionState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.dirty {
		return engine.SessionState{}, false
	}
	h.dirty = false
	return h.latest, true
}

// handleEvent reports false when the user asked to quit
func (h *Host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.handleKey(ev)
	case *tcell.EventMouse:
		h.handleMouse(ev)
	case *tcell.EventFocus:
		if !ev.Focused {
			h.releaseAll()
		}
		h.loop.SetVisible(ev.Focused)
	case *tcell.EventResize:
		h.screen.Sync()
		h.draw(h.loop.Snapshot())
	}
	return true
}

func (h *Host) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		if err := h.commands.StartSelected(); err != nil {
			h.logger.Warn(context.Background(), "Mission start refused", "mission", h.commands.Selected(), "error", err.Error())
		}
		return true
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'q':
			return false
		case 'p':
			h.commands.TogglePause()
			return true
		case '1', '2', '3':
			if err := h.commands.ToggleSystemAt(int(r - '1')); err != nil {
				h.logger.Warn(context.Background(), "System toggle refused", "key", string(r), "error", err.Error())
			}
			return true
		case 'm':
			h.commands.SelectNext()
			return true
		case '+', '=':
			h.radar.Zoom(1 / zoomStep)
			return true
		case '-':
			h.radar.Zoom(zoomStep)
			return true
		}
	}

	if code, ok := KeyCode(ev); ok {
		h.press(code)
	}
	return true
}

func (h *Host) press(code string) {
	now := h.now()
	if k, ok := h.held[code]; ok {
		k.last = now
		k.repeated = true
		h.held[code] = k
		return
	}
	h.held[code] = heldKey{last: now}
	h.mailbox.KeyDown(code)
}

// releaseStale sends a key-up for every key whose repeats have stopped
func (h *Host) releaseStale() {
	now := h.now()
	for code, k := range h.held {
		limit := h.firstHold
		if k.repeated {
			limit = h.repeatHold
		}
		if now.Sub(k.last) >= limit {
			delete(h.held, code)
			h.mailbox.KeyUp(code)
		}
	}
}

func (h *Host) releaseAll() {
	for code := range h.held {
		delete(h.held, code)
		h.mailbox.KeyUp(code)
	}
	if h.pointerDown {
		h.pointerDown = false
		h.mailbox.ContactEnd()
	}
}

func (h *Host) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	px, py := float64(x)*h.cellSize.X, float64(y)*h.cellSize.Y
	down := ev.Buttons()&tcell.Button1 != 0

	switch {
	case down && !h.pointerDown:
		h.pointerDown = true
		h.mailbox.ContactStart(px, py)
	case down:
		h.mailbox.ContactMove(px, py)
	case h.pointerDown:
		h.pointerDown = false
		h.mailbox.ContactEnd()
	}
}

func (h *Host) draw(s engine.SessionState) {
	h.screen.Clear()
	readings := h.instruments.Read()

	for i, line := range render.HUDLines(s, readings) {
		style := styleDefault
		switch {
		case i == 0 && s.Mode == engine.ModePaused:
			style = stylePaused
		case i == 0:
			style = styleHeader
		}
		h.drawText(0, i, line, style)
	}

	_, height := h.screen.Size()
	h.drawText(0, height-2, h.commands.StatusLine(s), styleMessage)
	h.drawText(0, height-1, helpLine, styleHelp)

	h.radar.Track(s, readings.Contacts)
	h.drawRadar()
	h.screen.Show()
}

// drawRadar places the radar, framed, against the right edge
func (h *Host) drawRadar() {
	width, _ := h.screen.Size()
	rw, _ := h.radar.Size()
	x0 := width - rw - 2
	if x0 < 0 {
		x0 = 0
	}

	border := make([]rune, rw+2)
	for i := range border {
		border[i] = '-'
	}
	border[0], border[rw+1] = '+', '+'
	h.drawText(x0, 0, string(border), styleBorder)

	rows := h.radar.Rows()
	for y, row := range rows {
		h.screen.SetContent(x0, y+1, '|', nil, styleBorder)
		for x, r := range []rune(row) {
			style := styleDefault
			switch r {
			case render.ContactGlyph:
				style = styleContact
			case '^', '>', 'v', '<':
				style = styleCraft
			}
			h.screen.SetContent(x0+1+x, y+1, r, nil, style)
		}
		h.screen.SetContent(x0+rw+1, y+1, '|', nil, styleBorder)
	}
	h.drawText(x0, len(rows)+1, string(border), styleBorder)
}

func (h *Host) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		h.screen.SetContent(x+i, y, r, nil, style)
	}
}
