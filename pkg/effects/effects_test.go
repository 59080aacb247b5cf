package effects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-skyward/pkg/mission"
	"github.com/opd-ai/go-skyward/pkg/physics"
)

func craftAt(x, y, z, speed float64) physics.CraftState {
	return physics.CraftState{
		Position: physics.Vector3D{X: x, Y: y, Z: z},
		Speed:    speed,
		Altitude: y,
		GForce:   1,
	}
}

func TestModuleNames(t *testing.T) {
	modules := []Module{NewPropulsion(2000), NewCloaking(), NewSensors(), NewAudio(2000, WithSpeaker(&fakeSpeaker{}))}
	names := []string{Propulsion, Cloaking, Sensors, Audio}
	for i, m := range modules {
		assert.Equal(t, names[i], m.Name())
		assert.False(t, m.IsActive(), "%s starts inactive", m.Name())
	}
}

func TestPropulsion_IntensityFollowsSpeed(t *testing.T) {
	p := NewPropulsion(2000)
	require.NoError(t, p.Init(context.Background()))
	p.SetActive(true)

	for i := 0; i < 600; i++ {
		require.NoError(t, p.Update(1.0/60, craftAt(0, 1000, 0, 1000)))
	}
	assert.InDelta(t, 0.5, p.Intensity(), 1e-3)
	assert.InDelta(t, 128, p.Particles(), 1)

	// Beyond the cap the plume saturates
	for i := 0; i < 600; i++ {
		require.NoError(t, p.Update(1.0/60, craftAt(0, 1000, 0, 5000)))
	}
	assert.LessOrEqual(t, p.Intensity(), 1.0)

	p.SetActive(false)
	assert.Equal(t, 0.0, p.Intensity())
	assert.Equal(t, 0, p.Particles())
}

func TestCloaking_FadesAndDecloaks(t *testing.T) {
	c := NewCloaking()
	assert.Equal(t, 1.0, c.Opacity())

	c.SetActive(true)
	require.NoError(t, c.Update(0.25, craftAt(0, 1000, 0, 0)))
	assert.InDelta(t, 1-(1-CloakedOpacity)/2, c.Opacity(), 1e-9)
	assert.False(t, c.Engaged())

	require.NoError(t, c.Update(1, craftAt(0, 1000, 0, 0)))
	assert.Equal(t, CloakedOpacity, c.Opacity())
	assert.True(t, c.Engaged())
	assert.GreaterOrEqual(t, c.Shimmer(), -1.0)
	assert.LessOrEqual(t, c.Shimmer(), 1.0)

	c.SetActive(false)
	assert.Equal(t, 1.0, c.Opacity())
	assert.False(t, c.Engaged())
}

func TestCloakingToggleLeavesPropulsionUnaffected(t *testing.T) {
	p := NewPropulsion(2000)
	c := NewCloaking()
	p.SetActive(true)

	craft := craftAt(0, 1200, -300, 800)
	for i := 0; i < 30; i++ {
		require.NoError(t, p.Update(0.1, craft))
	}
	before := p.Intensity()

	c.SetActive(true)
	require.NoError(t, c.Update(0.1, craft))
	c.SetActive(false)

	assert.True(t, p.IsActive())
	assert.Equal(t, before, p.Intensity())
}

func TestSensors_ContactsInRange(t *testing.T) {
	s := NewSensors()
	s.LoadMission(mission.Mission{
		SensorRange: 1000,
		Beacons: []mission.Beacon{
			{ID: "ahead", X: 0, Z: -500},
			{ID: "right", X: 800, Z: 0},
			{ID: "far", X: 5000, Z: 5000},
		},
	})
	s.SetActive(true)

	require.NoError(t, s.Update(0.5, craftAt(0, 1000, 0, 0)))

	contacts := s.Contacts()
	require.Len(t, contacts, 2)
	assert.Equal(t, "ahead", contacts[0].ID)
	assert.InDelta(t, 500, contacts[0].Distance, 1e-9)
	assert.InDelta(t, 0, contacts[0].Bearing, 1e-9)
	assert.Equal(t, "right", contacts[1].ID)
	assert.InDelta(t, 0.5*3.141592653589793, contacts[1].Bearing, 1e-9)
	assert.Equal(t, 2, s.Detected())
	assert.InDelta(t, 0.5*3.141592653589793, s.Sweep(), 1e-9)

	// Flying away drops contacts but keeps detections
	require.NoError(t, s.Update(0.1, craftAt(0, 1000, 10000, 0)))
	assert.Empty(t, s.Contacts())
	assert.Equal(t, 2, s.Detected())

	// A new mission clears detections
	s.LoadMission(mission.Mission{SensorRange: 1000})
	assert.Equal(t, 0, s.Detected())
}

func TestSensors_BearingFollowsYaw(t *testing.T) {
	s := NewSensors()
	s.LoadMission(mission.Mission{SensorRange: 1000, Beacons: []mission.Beacon{{ID: "left", X: -500, Z: 0}}})
	s.SetActive(true)

	// Yawing left by 90 degrees puts a beacon on the left straight ahead
	craft := craftAt(0, 1000, 0, 0)
	craft.Rotation.Yaw = 0.5 * 3.141592653589793
	require.NoError(t, s.Update(0.1, craft))

	contacts := s.Contacts()
	require.Len(t, contacts, 1)
	assert.InDelta(t, 0, contacts[0].Bearing, 1e-9)
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{3.5, 3.5 - 2*3.141592653589793},
		{-3.5, -3.5 + 2*3.141592653589793},
		{7, 7 - 2*3.141592653589793},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, wrapAngle(tt.in), 1e-9)
	}
}
