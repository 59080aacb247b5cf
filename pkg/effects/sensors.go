package effects

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/opd-ai/go-skyward/pkg/mission"
	"github.com/opd-ai/go-skyward/pkg/physics"
)

const (
	sweepRate        = math.Pi // rad/s, one revolution every two seconds
	beaconNodeSize   = 4
	sensorWorldBound = 1 << 17 // metres from the origin indexed by the beacon tree
)

// Contact is a beacon currently inside sensor range
type Contact struct {
	ID       string
	Position physics.Vector2D // world X and Z of the beacon
	Distance float64          // horizontal metres
	Bearing  float64 // radians, 0 straight ahead (-Z), positive to the right
}

// SensorsEffect sweeps the ground plane around the craft and reports the
// mission beacons inside range.
type SensorsEffect struct {
	toggle
	mu       sync.RWMutex
	beacons  *physics.QuadTree[mission.Beacon]
	rangeM   float64
	sweep    float64
	contacts []Contact
	detected map[string]bool
}

// NewSensors creates a sensor suite with no beacons loaded
func NewSensors() *SensorsEffect {
	s := &SensorsEffect{detected: make(map[string]bool)}
	s.LoadMission(mission.Mission{SensorRange: mission.DefaultSensorRange})
	return s
}

func (s *SensorsEffect) Name() string { return Sensors }

func (s *SensorsEffect) Init(ctx context.Context) error { return nil }

// LoadMission indexes the beacons of m and clears earlier detections
func (s *SensorsEffect) LoadMission(m mission.Mission) {
	bounds := physics.Rect{Width: 2 * sensorWorldBound, Height: 2 * sensorWorldBound}
	tree := physics.NewQuadTree[mission.Beacon](bounds, beaconNodeSize)
	for _, b := range m.Beacons {
		tree.Insert(physics.Vector2D{X: b.X, Y: b.Z}, b)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.beacons = tree
	s.rangeM = m.SensorRange
	s.contacts = nil
	s.sweep = 0
	clear(s.detected)
}

func (s *SensorsEffect) Update(deltaTime float64, craft physics.CraftState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep = math.Mod(s.sweep+sweepRate*deltaTime, 2*math.Pi)

	origin := craft.Position.Horizontal()
	found := s.beacons.QueryCircle(physics.Circle{Center: origin, Radius: s.rangeM})

	s.contacts = s.contacts[:0]
	for _, b := range found {
		pos := physics.Vector2D{X: b.X, Y: b.Z}
		offset := pos.Sub(origin)
		bearing := math.Atan2(offset.X, -offset.Y) + craft.Rotation.Yaw
		s.contacts = append(s.contacts, Contact{
			ID:       b.ID,
			Position: pos,
			Distance: offset.Length(),
			Bearing:  wrapAngle(bearing),
		})
		s.detected[b.ID] = true
	}
	sort.Slice(s.contacts, func(i, j int) bool {
		return s.contacts[i].Distance < s.contacts[j].Distance
	})
	return nil
}

func (s *SensorsEffect) SetActive(active bool) {
	s.toggle.SetActive(active)
	if !active {
		s.mu.Lock()
		s.contacts = nil
		s.mu.Unlock()
	}
}

func (s *SensorsEffect) Dispose() { s.SetActive(false) }

// Contacts returns the beacons in range after the last update, nearest first
func (s *SensorsEffect) Contacts() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Contact(nil), s.contacts...)
}

// Detected returns how many distinct beacons have been in range this mission
func (s *SensorsEffect) Detected() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.detected)
}

// Sweep returns the radar sweep angle in [0, 2π)
func (s *SensorsEffect) Sweep() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sweep
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
