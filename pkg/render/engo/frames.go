// pkg/render/engo/frames.go
package engo

import (
	"sync"
	"time"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-skyward/pkg/engine"
)

// FrameSystem is the loop's scheduler inside an engo world. Each world
// update advances its clock by dt and runs the frame requested since the
// previous update, if any.
type FrameSystem struct {
	mu      sync.Mutex
	now     time.Duration
	pending engine.FrameFunc
}

// NewFrameSystem creates a frame system with its clock at zero
func NewFrameSystem() *FrameSystem {
	return &FrameSystem{}
}

// RequestFrame implements engine.Scheduler
func (fs *FrameSystem) RequestFrame(fn engine.FrameFunc) {
	fs.mu.Lock()
	fs.pending = fn
	fs.mu.Unlock()
}

// Update satisfies the ecs.System interface
func (fs *FrameSystem) Update(dt float32) {
	fs.mu.Lock()
	fs.now += time.Duration(float64(dt) * float64(time.Second))
	fn, now := fs.pending, fs.now
	fs.pending = nil
	fs.mu.Unlock()

	if fn != nil {
		fn(now)
	}
}

// Remove satisfies the ecs.System interface
func (fs *FrameSystem) Remove(basic ecs.BasicEntity) {}

// Now returns the accumulated world time
func (fs *FrameSystem) Now() time.Duration {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.now
}
