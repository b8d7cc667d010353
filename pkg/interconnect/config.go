package interconnect

import (
	"fmt"
	"regexp"
)

// Config controls netlist discovery.
type Config struct {
	// RepeatsPerPin is the number of 0→1→0 cycles per driver.
	RepeatsPerPin int
	// MinToggleStrength is how many cycles an input must follow the driver
	// to be connected.
	MinToggleStrength int
	// RequireSymmetricToggle also drives 1→0→1 with the other outputs high
	// and requires the input to follow that too.
	RequireSymmetricToggle bool

	// OnlyPinPattern restricts the drivers to output ports matching it.
	OnlyPinPattern string

	pinRegex *regexp.Regexp
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RepeatsPerPin:     1,
		MinToggleStrength: 1,
	}
}

// Validate clamps the counts and compiles OnlyPinPattern.
func (c *Config) Validate() error {
	if c.RepeatsPerPin < 1 {
		c.RepeatsPerPin = 1
	}
	if c.MinToggleStrength < 1 {
		c.MinToggleStrength = 1
	}
	if c.MinToggleStrength > c.RepeatsPerPin {
		return fmt.Errorf("interconnect: MinToggleStrength %d exceeds RepeatsPerPin %d", c.MinToggleStrength, c.RepeatsPerPin)
	}
	c.pinRegex = nil
	if c.OnlyPinPattern != "" {
		re, err := regexp.Compile(c.OnlyPinPattern)
		if err != nil {
			return fmt.Errorf("interconnect: pin pattern: %w", err)
		}
		c.pinRegex = re
	}
	return nil
}

// ShouldScanPin reports whether port passes the OnlyPinPattern filter.
func (c *Config) ShouldScanPin(port string) bool {
	return c.pinRegex == nil || c.pinRegex.MatchString(port)
}
