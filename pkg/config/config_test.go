package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultFlightConfig(t *testing.T) {
	config := DefaultFlightConfig()

	if config == nil {
		t.Fatal("DefaultFlightConfig returned nil")
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"BaseThrust", config.BaseThrust, 500},
		{"ThrustForceUnit", config.ThrustForceUnit, 1000},
		{"MaxSpeed", config.MaxSpeed, 2000},
		{"Gravity", config.Gravity, 9.81},
		{"GravityReduction", config.GravityReduction, 0.892},
		{"Drag", config.Drag, 0.98},
		{"Mass", config.Mass, 1000},
		{"AngularGain", config.AngularGain, 2.0},
		{"LookSensitivity", config.LookSensitivity, 0.002},
		{"TiltDeadband", config.TiltDeadband, 5},
		{"TiltRollGain", config.TiltRollGain, 0.01},
		{"TiltLookGain", config.TiltLookGain, 0.005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Expected %s %v, got %v", tt.name, tt.want, tt.got)
			}
		})
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestLoadConfig_Success(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "flight.yaml")

	data := []byte("baseThrust: 750\nmaxSpeed: 1200\nlookSensitivity: 0.004\n")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.BaseThrust != 750 {
		t.Errorf("Expected BaseThrust 750, got %v", config.BaseThrust)
	}
	if config.MaxSpeed != 1200 {
		t.Errorf("Expected MaxSpeed 1200, got %v", config.MaxSpeed)
	}
	if config.LookSensitivity != 0.004 {
		t.Errorf("Expected LookSensitivity 0.004, got %v", config.LookSensitivity)
	}

	// Keys missing from the file keep their defaults
	if config.Gravity != 9.81 {
		t.Errorf("Expected Gravity 9.81, got %v", config.Gravity)
	}
	if config.Drag != 0.98 {
		t.Errorf("Expected Drag 0.98, got %v", config.Drag)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/flight.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("baseThrust: [unclosed"), 0o644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "flight.yaml")

	if err := os.WriteFile(configPath, []byte("mass: 0\n"), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadConfig(configPath)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "mass" {
		t.Errorf("Expected validation error on mass, got %v", err)
	}
}

func TestSaveConfig_Success(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "saved.yaml")

	config := DefaultFlightConfig()
	config.Drag = 0.95
	config.TiltDeadband = 8

	if err := SaveConfig(config, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if *loaded != *config {
		t.Errorf("Expected saved config %+v, got %+v", *config, *loaded)
	}
}

func TestSaveConfig_InvalidPath(t *testing.T) {
	err := SaveConfig(DefaultFlightConfig(), "/nonexistent/directory/flight.yaml")
	if err == nil {
		t.Error("Expected error for invalid path, got nil")
	}
}

func TestSaveConfig_NilConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nil.yaml")

	err := SaveConfig(nil, configPath)
	if err == nil {
		t.Error("Expected error for nil config, got nil")
	}
	if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
		t.Error("Expected no file to be written for nil config")
	}
}

func TestFlightConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(c *FlightConfig)
		errorField string
	}{
		{"Defaults", func(c *FlightConfig) {}, ""},
		{"ZeroBaseThrust", func(c *FlightConfig) { c.BaseThrust = 0 }, "baseThrust"},
		{"NegativeMaxSpeed", func(c *FlightConfig) { c.MaxSpeed = -1 }, "maxSpeed"},
		{"ZeroGravity", func(c *FlightConfig) { c.Gravity = 0 }, "gravity"},
		{"GravityReductionAboveOne", func(c *FlightConfig) { c.GravityReduction = 1.5 }, "gravityReduction"},
		{"FullGravityReduction", func(c *FlightConfig) { c.GravityReduction = 1 }, ""},
		{"ZeroDrag", func(c *FlightConfig) { c.Drag = 0 }, "drag"},
		{"NoDrag", func(c *FlightConfig) { c.Drag = 1 }, ""},
		{"ZeroThrustForceUnit", func(c *FlightConfig) { c.ThrustForceUnit = 0 }, "thrustForceUnit"},
		{"NegativeDeadband", func(c *FlightConfig) { c.TiltDeadband = -1 }, "tiltDeadband"},
		{"ZeroLookSensitivity", func(c *FlightConfig) { c.LookSensitivity = 0 }, "lookSensitivity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultFlightConfig()
			tt.mutate(c)
			err := c.Validate()

			if tt.errorField == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Field != tt.errorField {
				t.Errorf("Expected error field %s, got %s", tt.errorField, verr.Field)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Error("Expected error to wrap ErrInvalidConfig")
			}
		})
	}
}

func TestFlightConfig_Conversions(t *testing.T) {
	c := DefaultFlightConfig()
	c.BaseThrust = 600
	c.TiltRollGain = 0.02

	fp := c.FlightParams()
	if fp.BaseThrust != 600 {
		t.Errorf("Expected BaseThrust 600, got %v", fp.BaseThrust)
	}
	if fp.Mass != c.Mass || fp.Drag != c.Drag || fp.ThrustForceUnit != c.ThrustForceUnit {
		t.Errorf("Flight params do not mirror config: %+v", fp)
	}

	ip := c.InputParams()
	if ip.TiltRollGain != 0.02 {
		t.Errorf("Expected TiltRollGain 0.02, got %v", ip.TiltRollGain)
	}
	if ip.LookSensitivity != c.LookSensitivity || ip.TiltDeadband != c.TiltDeadband {
		t.Errorf("Input params do not mirror config: %+v", ip)
	}
}
