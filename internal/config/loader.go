package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the search directories.
const FileName = "sandbox.yaml"

// Load loads the sandbox configuration and validates it.
// Search order: customPath -> ~/.sandbox/sandbox.yaml -> ./configs/sandbox.yaml -> embedded default.
// A custom path must exist and parse; the search locations are skipped when missing
// or malformed. Fields a file omits keep their default values.
func Load(customPath string) (SandboxConfig, string, error) {
	cfg, source, err := load(customPath)
	if err != nil {
		return cfg, source, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, source, fmt.Errorf("config %s: %w", source, err)
	}
	return cfg, source, nil
}

func load(customPath string) (SandboxConfig, string, error) {
	// Try custom path first
	if customPath != "" {
		cfg, err := LoadFile(customPath)
		return cfg, customPath, err
	}

	// Try user config directory
	if p := UserPath(FileName); p != "" {
		if cfg, err := LoadFile(p); err == nil {
			return cfg, p, nil
		}
	}

	// Try local configs directory
	local := filepath.Join("configs", FileName)
	if cfg, err := LoadFile(local); err == nil {
		return cfg, local, nil
	}

	// Use embedded default YAML
	cfg := Default()
	if err := decodeYAML(defaultSandboxYAML, &cfg); err != nil {
		return Default(), "builtin", nil
	}
	return cfg, "embedded", nil
}

// LoadFile decodes a single file over the defaults. Files ending in .toml are read
// as TOML, everything else as YAML.
func LoadFile(path string) (SandboxConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := decodeYAML(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// decodeYAML rejects unknown keys so a typo does not silently fall back to a default.
func decodeYAML(data []byte, cfg *SandboxConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// UserDir returns ~/.sandbox, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sandbox")
}

// UserPath returns the path to a file under ~/.sandbox, or empty if home is unavailable.
func UserPath(filename string) string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, filename)
}

// EnsureUserDir creates ~/.sandbox if needed and returns it.
func EnsureUserDir() (string, error) {
	dir := UserDir()
	if dir == "" {
		return "", errors.New("config: home directory unavailable")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("config: create %s: %w", dir, err)
	}
	return dir, nil
}

// DatabasePath resolves the session database location.
func (c *SandboxConfig) DatabasePath() string {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath
	}
	return UserPath("sandbox.db")
}

// CrashLogPath resolves the crash log location.
func (c *SandboxConfig) CrashLogPath() string {
	if c.Storage.CrashLogPath != "" {
		return c.Storage.CrashLogPath
	}
	return UserPath("crash.log")
}

// HostKeyPath resolves the SSH host key used by the remote editor console.
func (c *SandboxConfig) HostKeyPath() string {
	if c.Editor.HostKeyPath != "" {
		return c.Editor.HostKeyPath
	}
	return UserPath("ssh_host_ed25519")
}
