// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-skyward/pkg/input"
	"github.com/opd-ai/go-skyward/pkg/physics"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidConfig
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// FlightConfig contains the recognized tunables of the flight model and the
// input fusion.
type FlightConfig struct {
	BaseThrust       float64 `yaml:"baseThrust"`
	ThrustForceUnit  float64 `yaml:"thrustForceUnit"`
	MaxSpeed         float64 `yaml:"maxSpeed"`
	Gravity          float64 `yaml:"gravity"`
	GravityReduction float64 `yaml:"gravityReduction"`
	Drag             float64 `yaml:"drag"`
	Mass             float64 `yaml:"mass"`
	AngularGain      float64 `yaml:"angularGain"`

	LookSensitivity float64 `yaml:"lookSensitivity"`
	TiltDeadband    float64 `yaml:"tiltDeadband"`
	TiltRollGain    float64 `yaml:"tiltRollGain"`
	TiltLookGain    float64 `yaml:"tiltLookGain"`
}

// DefaultFlightConfig returns the tuned flight configuration
func DefaultFlightConfig() *FlightConfig {
	fp := physics.DefaultFlightParams()
	ip := input.DefaultParams()
	return &FlightConfig{
		BaseThrust:       fp.BaseThrust,
		ThrustForceUnit:  fp.ThrustForceUnit,
		MaxSpeed:         fp.MaxSpeed,
		Gravity:          fp.Gravity,
		GravityReduction: fp.GravityReduction,
		Drag:             fp.Drag,
		Mass:             fp.Mass,
		AngularGain:      fp.AngularGain,
		LookSensitivity:  ip.LookSensitivity,
		TiltDeadband:     ip.TiltDeadband,
		TiltRollGain:     ip.TiltRollGain,
		TiltLookGain:     ip.TiltLookGain,
	}
}

// LoadConfig reads a YAML file over the defaults, so a file only needs the
// keys it changes. The result is validated.
func LoadConfig(path string) (*FlightConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultFlightConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes the configuration as YAML
func SaveConfig(config *FlightConfig, path string) error {
	if config == nil {
		return fmt.Errorf("failed to marshal config: %w", &ValidationError{Field: "config", Message: "is nil"})
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that every tunable is usable by the integrator
func (c *FlightConfig) Validate() error {
	positive := []struct {
		field string
		value float64
	}{
		{"baseThrust", c.BaseThrust},
		{"thrustForceUnit", c.ThrustForceUnit},
		{"maxSpeed", c.MaxSpeed},
		{"gravity", c.Gravity},
		{"mass", c.Mass},
		{"angularGain", c.AngularGain},
		{"lookSensitivity", c.LookSensitivity},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &ValidationError{Field: p.field, Message: fmt.Sprintf("must be positive, got %g", p.value)}
		}
	}

	if c.GravityReduction < 0 || c.GravityReduction > 1 {
		return &ValidationError{Field: "gravityReduction", Message: fmt.Sprintf("must be within [0, 1], got %g", c.GravityReduction)}
	}
	if c.Drag <= 0 || c.Drag > 1 {
		return &ValidationError{Field: "drag", Message: fmt.Sprintf("must be within (0, 1], got %g", c.Drag)}
	}
	if c.TiltDeadband < 0 {
		return &ValidationError{Field: "tiltDeadband", Message: fmt.Sprintf("must not be negative, got %g", c.TiltDeadband)}
	}
	return nil
}

// FlightParams converts the configuration for the integrator
func (c *FlightConfig) FlightParams() physics.FlightParams {
	return physics.FlightParams{
		BaseThrust:       c.BaseThrust,
		ThrustForceUnit:  c.ThrustForceUnit,
		MaxSpeed:         c.MaxSpeed,
		Gravity:          c.Gravity,
		GravityReduction: c.GravityReduction,
		Drag:             c.Drag,
		Mass:             c.Mass,
		AngularGain:      c.AngularGain,
	}
}

// InputParams converts the configuration for the input fusion
func (c *FlightConfig) InputParams() input.Params {
	return input.Params{
		LookSensitivity: c.LookSensitivity,
		TiltDeadband:    c.TiltDeadband,
		TiltRollGain:    c.TiltRollGain,
		TiltLookGain:    c.TiltLookGain,
	}
}
