package config

import (
	_ "embed"
)

//go:embed defaults/sandbox.yaml
var defaultSandboxYAML []byte

// Default returns the built-in configuration. It matches defaults/sandbox.yaml and
// is the fallback when the embedded file cannot be parsed.
func Default() SandboxConfig {
	return SandboxConfig{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Title:      "Sandbox",
			Fullscreen: true,
			VSync:      true,
		},
		Telemetry: TelemetryConfig{
			FPSWindow: 60,
		},
		Audio: AudioConfig{
			Enabled:    true,
			Volume:     0.4,
			SampleRate: 44100,
		},
		World: WorldConfig{
			Seed:         1,
			Gravity:      980,
			Restitution:  0.7,
			MaxBodies:    256,
			MaxParticles: 2048,
			InitialBalls: 8,
			TerrainScale: 0.25,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Enabled: true,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultSandboxYAML
}
