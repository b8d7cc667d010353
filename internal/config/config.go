// Package config loads the persistent settings of the ttjtag tool.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
)

// Adapter names.
const (
	AdapterSim      = "sim"
	AdapterCMSISDAP = "cmsis-dap"
)

// Fixture names for the simulator.
const (
	FixtureNone     = "none"
	FixtureLoopback = "loopback"
)

// Config stores the tool settings. Command-line flags override it.
type Config struct {
	Adapter  string `json:"adapter"`
	Serial   string `json:"serial,omitempty"`
	SpeedHz  int    `json:"speed_hz"`
	LogLevel string `json:"log_level"`
	Strict   bool   `json:"strict"`
	BSDLDir  string `json:"bsdl_dir,omitempty"`
	Fixture  string `json:"fixture"`
	Inputs   uint8  `json:"inputs"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Adapter:  AdapterSim,
		SpeedHz:  1_000_000,
		LogLevel: "info",
		Strict:   true,
		Fixture:  FixtureNone,
	}
}

// Validate checks the values a file or flags can get wrong.
func (c *Config) Validate() error {
	switch c.Adapter {
	case AdapterSim, AdapterCMSISDAP:
	default:
		return fmt.Errorf("config: unknown adapter %q", c.Adapter)
	}
	switch c.Fixture {
	case FixtureNone, FixtureLoopback:
	default:
		return fmt.Errorf("config: unknown fixture %q", c.Fixture)
	}
	if c.SpeedHz <= 0 {
		return fmt.Errorf("config: speed_hz must be positive, got %d", c.SpeedHz)
	}
	if _, ok := btclog.LevelFromString(c.LogLevel); !ok {
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

// DefaultPath returns the config file location: %APPDATA%\ttjtag on
// Windows, ~/.config/ttjtag elsewhere.
func DefaultPath() (string, error) {
	if dir := os.Getenv("APPDATA"); dir != "" {
		return filepath.Join(dir, "ttjtag", "config.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ttjtag", "config.json"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
