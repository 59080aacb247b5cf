// pkg/render/engo/scene.go
package engo

import (
	"bytes"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/opd-ai/go-skyward/pkg/input"
)

const (
	sceneType = "SkywardScene"
	fontURL   = "gomono.ttf"
	fontSize  = 14
)

// Options are the window settings
type Options struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	FPS        int
}

// Scene is the single engo scene of a session. Input is read first, then
// the requested simulation frame runs, then the HUD redraws.
type Scene struct {
	frames   *FrameSystem
	input    *InputSystem
	hud      *HUDSystem
	bindings input.Bindings
	onExit   func()
}

// NewScene creates the scene. onExit runs when the window closes.
func NewScene(frames *FrameSystem, inputSystem *InputSystem, hud *HUDSystem, bindings input.Bindings, onExit func()) *Scene {
	return &Scene{
		frames:   frames,
		input:    inputSystem,
		hud:      hud,
		bindings: bindings,
		onExit:   onExit,
	}
}

// Type returns the scene type (required by Engo)
func (scene *Scene) Type() string {
	return sceneType
}

// Preload registers the embedded HUD font (required by Engo)
func (scene *Scene) Preload() {
	if err := engo.Files.LoadReaderData(fontURL, bytes.NewReader(gomono.TTF)); err != nil {
		panic("Failed to load HUD font: " + err.Error())
	}
}

// Setup is called when the scene starts (required by Engo)
func (scene *Scene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)
	common.SetBackground(color.Black)

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	RegisterButtons(scene.bindings)
	world.AddSystem(scene.input)
	world.AddSystem(scene.frames)
	world.AddSystem(scene.hud)

	font := &common.Font{URL: fontURL, FG: color.White, Size: fontSize}
	if err := font.CreatePreloaded(); err != nil {
		panic("Failed to create HUD font: " + err.Error())
	}
	scene.hud.Attach(renderSystem, font)
}

// Exit is called when the window closes
func (scene *Scene) Exit() {
	if scene.onExit != nil {
		scene.onExit()
	}
}

// Run opens the window and blocks until it closes. It must be called from
// the main goroutine.
func Run(opts Options, scene *Scene) {
	engo.Run(engo.RunOptions{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Fullscreen: opts.Fullscreen,
		FPSLimit:   opts.FPS,
	}, scene)
}
