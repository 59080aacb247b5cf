package engo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-skyward/pkg/engine"
	"github.com/opd-ai/go-skyward/pkg/render"
)

func TestHUDSystem_RedrawsOnlyWhenDirty(t *testing.T) {
	loop := &fakeLoop{}
	hud := NewHUDSystem(render.Instruments{}, render.NewCommands(loop, []string{"alpha"}))

	hud.Update(0.016)
	panel, scope := hud.Text()
	assert.Empty(t, panel)
	assert.Empty(t, scope)

	hud.Observe(engine.SessionState{Mode: engine.ModeMenu})
	hud.Update(0.016)
	panel, scope = hud.Text()
	assert.True(t, strings.HasPrefix(panel, "SKYWARD"), panel)
	assert.Contains(t, panel, "next mission: alpha")
	assert.Contains(t, panel, helpText)

	rows := strings.Split(scope, "\n")
	require.Len(t, rows, radarHeight+2)
	assert.Equal(t, "+"+strings.Repeat("-", radarWidth)+"+", rows[0])
	assert.Equal(t, rows[0], rows[len(rows)-1])
	assert.Contains(t, rows[1+radarHeight/2], "^")
}

func TestHUDSystem_UsesLatestSnapshot(t *testing.T) {
	loop := &fakeLoop{}
	hud := NewHUDSystem(render.Instruments{}, render.NewCommands(loop, nil))

	hud.Observe(engine.SessionState{Mode: engine.ModeMenu})
	hud.Observe(engine.SessionState{Mode: engine.ModePaused, MissionID: "beta"})
	hud.Update(0.016)

	panel, _ := hud.Text()
	first := strings.SplitN(panel, "\n", 2)[0]
	assert.Contains(t, first, "paused")
	assert.Contains(t, first, "beta")
}

func TestHUDSystem_RadarShared(t *testing.T) {
	hud := NewHUDSystem(render.Instruments{}, render.NewCommands(&fakeLoop{}, nil))
	hud.Radar().Zoom(2)
	assert.InDelta(t, radarScale*2, hud.Radar().Scale(), 1e-9)
}

func TestLineSpacing(t *testing.T) {
	assert.Zero(t, lineSpacing(nil))
}
