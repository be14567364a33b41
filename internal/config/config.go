// Package config provides YAML/TOML sandbox configuration: window surface,
// editor, telemetry, audio, world tuning, logging and storage.
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// SandboxConfig is read once before the frame loop is constructed.
type SandboxConfig struct {
	Window    WindowConfig    `yaml:"window" toml:"window"`
	Editor    EditorConfig    `yaml:"editor" toml:"editor"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Audio     AudioConfig     `yaml:"audio" toml:"audio"`
	World     WorldConfig     `yaml:"world" toml:"world"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
}

// WindowConfig is the graphics host surface.
type WindowConfig struct {
	Width      int    `yaml:"width" toml:"width"`   // pixels, > 0
	Height     int    `yaml:"height" toml:"height"` // pixels, > 0
	Title      string `yaml:"title" toml:"title"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
}

// EditorConfig controls the in-process editor.
type EditorConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`             // start paused, accept editor commands
	SSHAddr     string `yaml:"ssh_addr" toml:"ssh_addr"`           // empty disables the remote console
	HostKeyPath string `yaml:"host_key_path" toml:"host_key_path"` // empty uses ~/.sandbox/ssh_host_ed25519
}

// TelemetryConfig tunes the timing recorder and HUD.
type TelemetryConfig struct {
	FPSWindow int  `yaml:"fps_window" toml:"fps_window"` // 1..120
	ShowHUD   bool `yaml:"show_hud" toml:"show_hud"`
}

// AudioConfig controls procedural sound effects.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled" toml:"enabled"`
	Volume     float64 `yaml:"volume" toml:"volume"` // 0..1
	SampleRate int     `yaml:"sample_rate" toml:"sample_rate"`
}

// WorldConfig tunes the demo scenes.
type WorldConfig struct {
	Seed         int64   `yaml:"seed" toml:"seed"`
	Gravity      float64 `yaml:"gravity" toml:"gravity"`         // px/s^2
	Restitution  float64 `yaml:"restitution" toml:"restitution"` // 0..1
	MaxBodies    int     `yaml:"max_bodies" toml:"max_bodies"`
	MaxParticles int     `yaml:"max_particles" toml:"max_particles"`
	InitialBalls int     `yaml:"initial_balls" toml:"initial_balls"`
	TerrainScale float64 `yaml:"terrain_scale" toml:"terrain_scale"` // fraction of height used by hills
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"` // debug, info, warn, error
}

// StorageConfig locates the session database and crash log.
type StorageConfig struct {
	Enabled      bool   `yaml:"enabled" toml:"enabled"`
	DatabasePath string `yaml:"database_path" toml:"database_path"`   // empty uses ~/.sandbox/sandbox.db
	CrashLogPath string `yaml:"crash_log_path" toml:"crash_log_path"` // empty uses ~/.sandbox/crash.log
}

// Validate checks every field that would otherwise fail later inside a host or system.
func (c *SandboxConfig) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("config: %s: %w", fmt.Sprintf(format, args...), ErrInvalid))
	}

	if c.Window.Width <= 0 {
		invalid("window.width must be positive, got %d", c.Window.Width)
	}
	if c.Window.Height <= 0 {
		invalid("window.height must be positive, got %d", c.Window.Height)
	}
	if strings.TrimSpace(c.Window.Title) == "" {
		invalid("window.title must not be empty")
	} else if !utf8.ValidString(c.Window.Title) {
		invalid("window.title is not valid UTF-8")
	}
	if c.Telemetry.FPSWindow < 1 || c.Telemetry.FPSWindow > 120 {
		invalid("telemetry.fps_window must be in [1, 120], got %d", c.Telemetry.FPSWindow)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		invalid("audio.volume must be in [0, 1], got %g", c.Audio.Volume)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		invalid("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.World.Restitution < 0 || c.World.Restitution > 1 {
		invalid("world.restitution must be in [0, 1], got %g", c.World.Restitution)
	}
	if c.World.MaxBodies <= 0 {
		invalid("world.max_bodies must be positive, got %d", c.World.MaxBodies)
	}
	if c.World.MaxParticles <= 0 {
		invalid("world.max_particles must be positive, got %d", c.World.MaxParticles)
	}
	if c.World.InitialBalls < 0 || c.World.InitialBalls > c.World.MaxBodies {
		invalid("world.initial_balls must be in [0, max_bodies], got %d", c.World.InitialBalls)
	}
	if c.World.TerrainScale < 0 || c.World.TerrainScale > 1 {
		invalid("world.terrain_scale must be in [0, 1], got %g", c.World.TerrainScale)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		invalid("logging.level %q is unknown", c.Logging.Level)
	}

	return errors.Join(errs...)
}

// LogLevel returns the parsed logging level, defaulting to info.
func (c *SandboxConfig) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Overrides are command-line values layered over a loaded config.
// Nil fields leave the config untouched.
type Overrides struct {
	Width    *int
	Height   *int
	Title    *string
	Windowed *bool
	Editor   *bool
	Seed     *int64
	LogLevel *string
	Database *string
}

// ApplyOverrides layers o over c.
func (c *SandboxConfig) ApplyOverrides(o Overrides) {
	if o.Width != nil {
		c.Window.Width = *o.Width
	}
	if o.Height != nil {
		c.Window.Height = *o.Height
	}
	if o.Title != nil {
		c.Window.Title = *o.Title
	}
	if o.Windowed != nil {
		c.Window.Fullscreen = !*o.Windowed
	}
	if o.Editor != nil {
		c.Editor.Enabled = *o.Editor
	}
	if o.Seed != nil {
		c.World.Seed = *o.Seed
	}
	if o.LogLevel != nil {
		c.Logging.Level = *o.LogLevel
	}
	if o.Database != nil {
		c.Storage.DatabasePath = *o.Database
	}
}
