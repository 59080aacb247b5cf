package effects

import (
	"context"
	"math"
	"sync"

	"github.com/opd-ai/go-skyward/pkg/physics"
)

// Cloak tuning
const (
	CloakedOpacity = 0.15
	cloakFadeTime  = 0.5 // seconds from visible to cloaked
	shimmerRate    = 3.0 // rad/s
)

// CloakingEffect fades the craft out while active. Deactivating it
// decloaks immediately.
type CloakingEffect struct {
	toggle
	mu      sync.RWMutex
	opacity float64
	phase   float64
}

// NewCloaking creates the cloaking field, initially decloaked
func NewCloaking() *CloakingEffect {
	return &CloakingEffect{opacity: 1}
}

func (c *CloakingEffect) Name() string { return Cloaking }

func (c *CloakingEffect) Init(ctx context.Context) error { return nil }

func (c *CloakingEffect) Update(deltaTime float64, craft physics.CraftState) error {
	step := (1 - CloakedOpacity) * deltaTime / cloakFadeTime
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opacity = math.Max(CloakedOpacity, c.opacity-step)
	c.phase = math.Mod(c.phase+shimmerRate*deltaTime, 2*math.Pi)
	return nil
}

func (c *CloakingEffect) SetActive(active bool) {
	c.toggle.SetActive(active)
	if !active {
		c.mu.Lock()
		c.opacity = 1
		c.phase = 0
		c.mu.Unlock()
	}
}

func (c *CloakingEffect) Dispose() { c.SetActive(false) }

// Opacity returns how visible the craft is, 1 when decloaked
func (c *CloakingEffect) Opacity() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opacity
}

// Engaged reports whether the field has fully faded the craft out
func (c *CloakingEffect) Engaged() bool {
	return c.Opacity() <= CloakedOpacity
}

// Shimmer returns the edge distortion in [-1, 1]
func (c *CloakingEffect) Shimmer() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return math.Sin(c.phase)
}
