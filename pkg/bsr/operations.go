package bsr

import (
	"fmt"
	"strings"
)

// Sample loads SAMPLE and captures the pins while the core keeps running.
// The cached vector is shifted in, so Sample also preloads it.
func (c *Controller) Sample() (Snapshot, error) {
	if err := c.load("SAMPLE"); err != nil {
		return Snapshot{}, err
	}
	return c.scan()
}

// Preload writes output values into the update stage without handing the
// pins to the boundary register. A later Extest drives them glitch free.
func (c *Controller) Preload(values map[string]bool) error {
	name := "PRELOAD"
	if _, err := c.desc.Opcode(name); err != nil {
		name = "SAMPLE"
	}
	if err := setCells(c.current, c.desc.Pins.OutputCell, values); err != nil {
		return err
	}
	if err := c.load(name); err != nil {
		return err
	}
	_, err := c.scan()
	return err
}

// Extest loads EXTEST, shifts the cached vector and returns what the pins
// captured. Every output port is driven from its cell afterwards.
func (c *Controller) Extest() (Snapshot, error) {
	if err := c.load("EXTEST"); err != nil {
		return Snapshot{}, err
	}
	snap, err := c.scan()
	if err != nil {
		return Snapshot{}, err
	}
	for port, ps := range c.Pins {
		val := c.current[c.desc.Pins.OutputCell[port]]
		ps.Mode = PinDriven
		ps.DrivenVal = &val
	}
	return snap, nil
}

// Drive sets output ports under EXTEST, loading it if needed.
func (c *Controller) Drive(values map[string]bool) error {
	if err := setCells(c.current, c.desc.Pins.OutputCell, values); err != nil {
		return err
	}
	if _, err := c.Extest(); err != nil {
		return err
	}
	log.Debugf("%s: drove %s", c.desc.Entity, strings.Join(sortedPorts(values), ","))
	return nil
}

// DrivePin drives one output port high or low.
func (c *Controller) DrivePin(port string, high bool) error {
	if c.GetPinState(port) == nil {
		return fmt.Errorf("bsr: pin %s not found on %s", port, c.desc.Entity)
	}
	return c.Drive(map[string]bool{strings.ToUpper(port): high})
}

// CaptureAll scans the cached vector under the instruction in force. It
// fails when that instruction does not select the boundary register.
func (c *Controller) CaptureAll() (Snapshot, error) {
	if !c.boundarySelected() {
		return Snapshot{}, fmt.Errorf("bsr: %q does not select the boundary register", c.mode)
	}
	return c.scan()
}

// Intest isolates the core and applies values to its input cells. The first
// scan updates the stimulus, the second captures the core's response.
func (c *Controller) Intest(values map[string]bool) (Snapshot, error) {
	if err := setCells(c.current, c.desc.Pins.InputCell, values); err != nil {
		return Snapshot{}, err
	}
	if err := c.load("INTEST"); err != nil {
		return Snapshot{}, err
	}
	if _, err := c.scan(); err != nil {
		return Snapshot{}, err
	}
	return c.scan()
}

// Clamp holds the outputs at the update stage and puts BYPASS between TDI
// and TDO.
func (c *Controller) Clamp() error {
	return c.load("CLAMP")
}

// Bypass returns the pins to the core.
func (c *Controller) Bypass() error {
	if err := c.load("BYPASS"); err != nil {
		return err
	}
	for _, ps := range c.Pins {
		ps.Mode = PinReleased
		ps.DrivenVal = nil
	}
	return nil
}

// Release resets the TAP, which selects IDCODE and returns the pins to the
// core.
func (c *Controller) Release() error {
	if err := c.sess.Reset(false); err != nil {
		return err
	}
	c.mode = "IDCODE"
	for _, ps := range c.Pins {
		ps.Mode = PinReleased
		ps.DrivenVal = nil
	}
	return nil
}
