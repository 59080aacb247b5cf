package effects

import (
	"context"
	"math"
	"sync"

	"github.com/opd-ai/go-skyward/pkg/physics"
)

// Exhaust tuning
const (
	MaxParticles    = 256
	exhaustResponse = 4.0 // 1/s
)

// PropulsionEffect tracks the exhaust plume. Its intensity follows the craft
// speed relative to the speed cap, smoothed so the plume swells and fades
// instead of snapping.
type PropulsionEffect struct {
	toggle
	maxSpeed float64

	mu        sync.RWMutex
	intensity float64
}

// NewPropulsion creates the exhaust effect for a craft capped at maxSpeed
func NewPropulsion(maxSpeed float64) *PropulsionEffect {
	return &PropulsionEffect{maxSpeed: maxSpeed}
}

func (p *PropulsionEffect) Name() string { return Propulsion }

func (p *PropulsionEffect) Init(ctx context.Context) error { return nil }

func (p *PropulsionEffect) Update(deltaTime float64, craft physics.CraftState) error {
	target := 0.0
	if p.maxSpeed > 0 {
		target = physics.Clamp(craft.Speed/p.maxSpeed, 0, 1)
	}
	blend := 1 - math.Exp(-exhaustResponse*deltaTime)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intensity += (target - p.intensity) * blend
	return nil
}

// SetActive turns the plume on or off. Switching off extinguishes it.
func (p *PropulsionEffect) SetActive(active bool) {
	p.toggle.SetActive(active)
	if !active {
		p.mu.Lock()
		p.intensity = 0
		p.mu.Unlock()
	}
}

func (p *PropulsionEffect) Dispose() { p.SetActive(false) }

// Intensity returns the plume strength in [0, 1]
func (p *PropulsionEffect) Intensity() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.intensity
}

// Particles returns how many exhaust particles to draw
func (p *PropulsionEffect) Particles() int {
	return int(math.Round(p.Intensity() * MaxParticles))
}
