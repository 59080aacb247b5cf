// pkg/render/engo/hud.go
package engo

import (
	"image/color"
	"strings"
	"sync"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-skyward/pkg/engine"
	"github.com/opd-ai/go-skyward/pkg/render"
)

const (
	hudMargin     = 10
	hudLineHeight = 18
	hudZIndex     = 1000
	radarWidth    = 41
	radarHeight   = 21
	radarScale    = 100.0
	helpText      = "wasd/arrows move  space up  shift/c down  drag look  p pause  1-3 systems  m next  enter start  wheel zoom  esc quit"
)

// textEntity is one block of HUD text
type textEntity struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// HUDSystem manages the heads-up display: the flight panel on the left and
// the radar on the right. It redraws only when a new snapshot arrived.
type HUDSystem struct {
	instruments render.Instruments
	commands    *render.Commands
	radar       *render.Radar

	font  *common.Font
	panel *textEntity
	scope *textEntity

	mu     sync.Mutex
	latest engine.SessionState
	dirty  bool

	panelText string
	scopeText string
}

// NewHUDSystem creates a new HUD system
func NewHUDSystem(instruments render.Instruments, commands *render.Commands) *HUDSystem {
	return &HUDSystem{
		instruments: instruments,
		commands:    commands,
		radar:       render.NewRadar(radarWidth, radarHeight, radarScale),
	}
}

// Radar returns the radar the HUD draws, for zoom control
func (hud *HUDSystem) Radar() *render.Radar {
	return hud.radar
}

// Observe implements engine.Observer
func (hud *HUDSystem) Observe(s engine.SessionState) {
	hud.mu.Lock()
	hud.latest = s
	hud.dirty = true
	hud.mu.Unlock()
}

// Attach creates the text entities and hands them to the render system
func (hud *HUDSystem) Attach(rs *common.RenderSystem, font *common.Font) {
	hud.font = font
	hud.panel = hud.newText(engo.Point{X: hudMargin, Y: hudMargin})
	scopeX := engo.GameWidth() - float32(radarWidth+2)*float32(font.Size)*0.6 - hudMargin
	hud.scope = hud.newText(engo.Point{X: scopeX, Y: hudMargin})

	rs.Add(&hud.panel.BasicEntity, &hud.panel.RenderComponent, &hud.panel.SpaceComponent)
	rs.Add(&hud.scope.BasicEntity, &hud.scope.RenderComponent, &hud.scope.SpaceComponent)
}

func (hud *HUDSystem) newText(pos engo.Point) *textEntity {
	e := &textEntity{BasicEntity: ecs.NewBasic()}
	e.RenderComponent = common.RenderComponent{
		Drawable: common.Text{Font: hud.font},
		Color:    color.White,
	}
	e.RenderComponent.SetShader(common.HUDShader)
	e.RenderComponent.SetZIndex(hudZIndex)
	e.SpaceComponent = common.SpaceComponent{Position: pos}
	return e
}

// Update satisfies the ecs.System interface
func (hud *HUDSystem) Update(dt float32) {
	hud.mu.Lock()
	s, dirty := hud.latest, hud.dirty
	hud.dirty = false
	hud.mu.Unlock()

	if !dirty {
		return
	}

	readings := hud.instruments.Read()
	lines := render.HUDLines(s, readings)
	lines = append(lines, "", hud.commands.StatusLine(s), helpText)
	hud.panelText = strings.Join(lines, "\n")

	hud.radar.Track(s, readings.Contacts)
	rows := hud.radar.Rows()
	border := "+" + strings.Repeat("-", radarWidth) + "+"
	framed := make([]string, 0, len(rows)+2)
	framed = append(framed, border)
	for _, row := range rows {
		framed = append(framed, "|"+row+"|")
	}
	framed = append(framed, border)
	hud.scopeText = strings.Join(framed, "\n")

	if hud.panel != nil {
		hud.panel.Drawable = common.Text{Font: hud.font, Text: hud.panelText, LineSpacing: lineSpacing(hud.font)}
		hud.scope.Drawable = common.Text{Font: hud.font, Text: hud.scopeText, LineSpacing: lineSpacing(hud.font)}
	}
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Text returns the panel and radar text of the last redraw
func (hud *HUDSystem) Text() (panel, scope string) {
	return hud.panelText, hud.scopeText
}

func lineSpacing(font *common.Font) float32 {
	if font == nil || font.Size == 0 {
		return 0
	}
	return hudLineHeight/float32(font.Size) - 1
}
