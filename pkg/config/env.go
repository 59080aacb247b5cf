package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Host names accepted by SKYWARD_HOST / -host
const (
	HostTerminal = "terminal"
	HostEngo     = "engo"
	HostHeadless = "headless"
)

// EnvironmentConfig holds process-level settings read from SKYWARD_*
// variables. Command-line flags take precedence over the environment.
type EnvironmentConfig struct {
	Host         string `env:"SKYWARD_HOST"     envDefault:"terminal"`
	ConfigPath   string `env:"SKYWARD_CONFIG"`
	MissionsPath string `env:"SKYWARD_MISSIONS"`
	Mission      string `env:"SKYWARD_MISSION"`
	LogFile      string `env:"SKYWARD_LOG_FILE"`

	FPS           int           `env:"SKYWARD_FPS"             envDefault:"60"`
	MaxFrameDelta time.Duration `env:"SKYWARD_MAX_FRAME_DELTA" envDefault:"100ms"`
	Duration      time.Duration `env:"SKYWARD_DURATION"        envDefault:"10s"`

	Audio bool `env:"SKYWARD_AUDIO" envDefault:"true"`

	BreakerMaxFailures uint32        `env:"SKYWARD_BREAKER_MAX_FAILURES" envDefault:"5"`
	BreakerTimeout     time.Duration `env:"SKYWARD_BREAKER_TIMEOUT"      envDefault:"5s"`

	MaxGoroutines   int           `env:"SKYWARD_MAX_GOROUTINES"   envDefault:"16"`
	MaxMemoryMB     int64         `env:"SKYWARD_MAX_MEMORY_MB"    envDefault:"512"`
	ShutdownTimeout time.Duration `env:"SKYWARD_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	Width      int  `env:"SKYWARD_WIDTH"      envDefault:"1024"`
	Height     int  `env:"SKYWARD_HEIGHT"     envDefault:"768"`
	Fullscreen bool `env:"SKYWARD_FULLSCREEN"`
}

// LoadEnvironment parses the environment into an EnvironmentConfig
func LoadEnvironment() (*EnvironmentConfig, error) {
	var cfg EnvironmentConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// ParseConfig loads the environment, then lets flags in args override it.
// The result is validated.
func ParseConfig(fs *flag.FlagSet, args []string) (*EnvironmentConfig, error) {
	cfg, err := LoadEnvironment()
	if err != nil {
		return nil, err
	}

	fs.StringVar(&cfg.Host, "host", cfg.Host, "host platform: terminal, engo or headless")
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "path to a flight tunables YAML file")
	fs.StringVar(&cfg.MissionsPath, "missions", cfg.MissionsPath, "path to a mission catalog YAML file")
	fs.StringVar(&cfg.Mission, "mission", cfg.Mission, "mission to start immediately")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file instead of stdout")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "frame rate for the terminal and headless hosts")
	fs.DurationVar(&cfg.MaxFrameDelta, "max-frame-delta", cfg.MaxFrameDelta, "cap on a single frame delta")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "how long the headless host flies")
	fs.BoolVar(&cfg.Audio, "audio", cfg.Audio, "enable the engine hum")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "window width (engo only)")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "window height (engo only)")
	fs.BoolVar(&cfg.Fullscreen, "fullscreen", cfg.Fullscreen, "run fullscreen (engo only)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the environment settings
func (c *EnvironmentConfig) Validate() error {
	switch c.Host {
	case HostTerminal, HostEngo, HostHeadless:
	default:
		return &ValidationError{Field: "Host", Message: fmt.Sprintf("unknown host %q", c.Host)}
	}
	if c.FPS < 1 || c.FPS > 1000 {
		return &ValidationError{Field: "FPS", Message: fmt.Sprintf("must be within [1, 1000], got %d", c.FPS)}
	}
	if c.MaxFrameDelta <= 0 {
		return &ValidationError{Field: "MaxFrameDelta", Message: "must be positive"}
	}
	if c.Host == HostHeadless && c.Duration <= 0 {
		return &ValidationError{Field: "Duration", Message: "must be positive for the headless host"}
	}
	if c.BreakerMaxFailures == 0 {
		return &ValidationError{Field: "BreakerMaxFailures", Message: "must be at least 1"}
	}
	if c.BreakerTimeout <= 0 {
		return &ValidationError{Field: "BreakerTimeout", Message: "must be positive"}
	}
	if c.MaxGoroutines < 1 {
		return &ValidationError{Field: "MaxGoroutines", Message: "must be at least 1"}
	}
	if c.MaxMemoryMB < 1 {
		return &ValidationError{Field: "MaxMemoryMB", Message: "must be at least 1"}
	}
	if c.ShutdownTimeout <= 0 {
		return &ValidationError{Field: "ShutdownTimeout", Message: "must be positive"}
	}
	return nil
}

// FrameInterval returns the duration of one frame at the configured FPS
func (c *EnvironmentConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
