package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-skyward/pkg/effects"
	"github.com/opd-ai/go-skyward/pkg/engine"
	"github.com/opd-ai/go-skyward/pkg/physics"
)

// ContactGlyph marks a sensor contact on the radar
const ContactGlyph = '*'

// Radar zoom limits, in metres per cell
const (
	MinRadarScale = 10.0
	MaxRadarScale = 1000.0
)

// Radar is a north-up ASCII plan view of the ground plane. World X runs to
// the right and world -Z runs up the screen, so the craft flies "up" at
// zero yaw.
type Radar struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float64 // metres per cell
	centerPos physics.Vector2D
}

// NewRadar creates a radar with the specified dimensions
func NewRadar(width, height int, scale float64) *Radar {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	r := &Radar{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
	r.Clear()
	return r
}

// Size returns the radar dimensions in cells
func (r *Radar) Size() (int, int) {
	return r.width, r.height
}

// Scale returns the metres covered by one cell
func (r *Radar) Scale() float64 {
	return r.scale
}

// Zoom multiplies the scale by factor. A factor above 1 zooms out.
func (r *Radar) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	r.scale = clampScale(r.scale * factor)
}

// clampScale keeps the scale within the zoom limits
func clampScale(scale float64) float64 {
	if scale < MinRadarScale {
		return MinRadarScale
	}
	if scale > MaxRadarScale {
		return MaxRadarScale
	}
	return scale
}

// SetCenter sets the ground position (X, Z) shown in the middle of the view
func (r *Radar) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// worldToScreen converts ground coordinates to cell coordinates
func (r *Radar) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2))
	screenY := int(math.Floor((pos.Y-r.centerPos.Y)/r.scale + float64(r.height)/2))
	return screenX, screenY
}

// Clear blanks the buffer
func (r *Radar) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// Plot draws glyph at a ground position. It reports false when the
// position falls outside the view.
func (r *Radar) Plot(pos physics.Vector2D, glyph rune) bool {
	x, y := r.worldToScreen(pos)
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return false
	}
	r.buffer[y][x] = glyph
	return true
}

// PlotCraft draws the craft as an arrow pointing along its heading
func (r *Radar) PlotCraft(pos physics.Vector2D, yaw float64) bool {
	return r.Plot(pos, HeadingGlyph(yaw))
}

// HeadingGlyph returns the arrow closest to the nose direction for a yaw
// angle. Positive yaw turns the nose west.
func HeadingGlyph(yaw float64) rune {
	glyphs := [4]rune{'^', '>', 'v', '<'}
	sector := int(math.Round(-yaw/(math.Pi/2))) % 4
	if sector < 0 {
		sector += 4
	}
	return glyphs[sector]
}

// Track redraws the view centred on the craft with the given contacts
func (r *Radar) Track(s engine.SessionState, contacts []effects.Contact) {
	r.Clear()
	craft := s.Craft.Position.Horizontal()
	r.SetCenter(craft)
	for _, c := range contacts {
		r.Plot(c.Position, ContactGlyph)
	}
	r.PlotCraft(craft, s.Craft.Rotation.Yaw)
}

// Rows returns the buffer as strings, top row first
func (r *Radar) Rows() []string {
	rows := make([]string, len(r.buffer))
	for y := range r.buffer {
		rows[y] = string(r.buffer[y])
	}
	return rows
}

// Present writes the buffer framed by a border
func (r *Radar) Present(w io.Writer) error {
	var b strings.Builder
	border := "+" + strings.Repeat("-", r.width) + "+\n"
	b.WriteString(border)
	for _, row := range r.Rows() {
		b.WriteString("|" + row + "|\n")
	}
	b.WriteString(border)

	_, err := fmt.Fprint(w, b.String())
	return err
}
