// Package mission holds the catalog of flyable missions: the subsystems each
// one starts with, the objective that ends it and the ground beacons the
// sensors can pick up.
package mission

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed missions.yaml
var embeddedCatalog []byte

// DefaultSensorRange is used when a mission does not set sensorRange
const DefaultSensorRange = 2000.0

// ErrInvalidCatalog is wrapped by every catalog decoding failure
var ErrInvalidCatalog = errors.New("invalid mission catalog")

// Systems are the subsystem flags a mission starts with
type Systems struct {
	Propulsion bool `yaml:"propulsion"`
	Cloaking   bool `yaml:"cloaking"`
	Sensors    bool `yaml:"sensors"`
}

// Beacon is a fixed ground marker, positioned on the horizontal plane
type Beacon struct {
	ID string  `yaml:"id"`
	X  float64 `yaml:"x"`
	Z  float64 `yaml:"z"`
}

// Mission describes one entry of the catalog
type Mission struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Systems     Systems   `yaml:"systems"`
	Objective   Objective `yaml:"objective"`
	SensorRange float64   `yaml:"sensorRange"`
	Beacons     []Beacon  `yaml:"beacons"`
}

type catalogDocument struct {
	Missions []Mission `yaml:"missions"`
}

// Catalog is an ordered, read-only set of missions
type Catalog struct {
	missions map[string]Mission
	order    []string
}

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	c, err := Parse(embeddedCatalog)
	if err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return c, nil
}

// Load returns the embedded catalog with the missions of the YAML file at
// path merged over it. Entries with a known id replace the built-in mission;
// new ids are appended.
func Load(path string) (*Catalog, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission file: %w", err)
	}

	override, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	for _, id := range override.order {
		c.add(override.missions[id])
	}
	return c, nil
}

// Parse decodes a catalog document
func Parse(raw []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{missions: make(map[string]Mission, len(doc.Missions))}
	for i, m := range doc.Missions {
		m.ID = strings.TrimSpace(m.ID)
		if m.ID == "" {
			return nil, fmt.Errorf("%w: mission %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.missions[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate mission id %q", ErrInvalidCatalog, m.ID)
		}
		if err := m.Objective.validate(); err != nil {
			return nil, fmt.Errorf("%w: mission %q: %v", ErrInvalidCatalog, m.ID, err)
		}
		if m.SensorRange < 0 {
			return nil, fmt.Errorf("%w: mission %q: negative sensor range", ErrInvalidCatalog, m.ID)
		}
		if m.SensorRange == 0 {
			m.SensorRange = DefaultSensorRange
		}
		if m.Name == "" {
			m.Name = m.ID
		}
		c.add(m)
	}
	return c, nil
}

func (c *Catalog) add(m Mission) {
	if _, ok := c.missions[m.ID]; !ok {
		c.order = append(c.order, m.ID)
	}
	c.missions[m.ID] = m
}

// Get returns the mission with the given id
func (c *Catalog) Get(id string) (Mission, bool) {
	m, ok := c.missions[id]
	if !ok {
		return Mission{}, false
	}
	m.Beacons = append([]Beacon(nil), m.Beacons...)
	return m, true
}

// IDs returns mission ids in catalog order
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of missions
func (c *Catalog) Len() int {
	return len(c.order)
}
