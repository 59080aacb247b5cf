package mission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"atmospheric", "orbital", "stealth", "recon"}, c.IDs())
	assert.Equal(t, 4, c.Len())

	atmo, ok := c.Get("atmospheric")
	require.True(t, ok)
	assert.True(t, atmo.Systems.Propulsion)
	assert.False(t, atmo.Systems.Cloaking)
	assert.Equal(t, 1500.0, atmo.Objective.TargetAltitude)

	stealth, ok := c.Get("stealth")
	require.True(t, ok)
	assert.True(t, stealth.Systems.Cloaking)
	assert.Len(t, stealth.Beacons, 2)

	_, ok = c.Get("lunar")
	assert.False(t, ok)
}

func TestCatalog_GetReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	m, _ := c.Get("recon")
	m.Beacons[0].X = 99999

	again, _ := c.Get("recon")
	assert.NotEqual(t, 99999.0, again.Beacons[0].X)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"empty", "missions: []", false},
		{"minimal", "missions:\n  - id: hop\n", false},
		{"missing id", "missions:\n  - name: Nameless\n", true},
		{"duplicate id", "missions:\n  - id: a\n  - id: a\n", true},
		{"negative time limit", "missions:\n  - id: a\n    objective:\n      timeLimit: -1\n", true},
		{"floor above target", "missions:\n  - id: a\n    objective:\n      targetAltitude: 100\n      minAltitude: 200\n", true},
		{"negative sensor range", "missions:\n  - id: a\n    sensorRange: -5\n", true},
		{"malformed", "missions: {", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCatalog)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	c, err := Parse([]byte("missions:\n  - id: hop\n"))
	require.NoError(t, err)

	m, ok := c.Get("hop")
	require.True(t, ok)
	assert.Equal(t, "hop", m.Name)
	assert.Equal(t, DefaultSensorRange, m.SensorRange)
}

func TestLoad_MergesOverEmbedded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missions.yaml")
	doc := `missions:
  - id: orbital
    name: Short Orbital
    objective:
      targetAltitude: 2000
  - id: canyon
    systems:
      propulsion: true
    objective:
      minAltitude: 50
      timeLimit: 60
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"atmospheric", "orbital", "stealth", "recon", "canyon"}, c.IDs())

	orbital, _ := c.Get("orbital")
	assert.Equal(t, "Short Orbital", orbital.Name)
	assert.Equal(t, 2000.0, orbital.Objective.TargetAltitude)

	canyon, ok := c.Get("canyon")
	require.True(t, ok)
	assert.True(t, canyon.Systems.Propulsion)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("missions:\n  - id: ''\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}
