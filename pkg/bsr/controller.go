package bsr

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/ttjtag/pkg/bsdl"
	"github.com/OpenTraceLab/ttjtag/pkg/session"
)

// Controller provides pin-centric boundary-scan operations on one device. It
// caches the boundary vector last shifted so operations only change the
// cells they are about.
type Controller struct {
	sess   *session.Session
	target *session.Target
	desc   *bsdl.Description

	length  int
	current []bool
	mode    string

	Pins map[string]*PinState
}

// NewController builds a runtime for target. Every output starts released
// and the cached vector holds the BSDL safe values.
func NewController(sess *session.Session, target *session.Target) (*Controller, error) {
	if sess == nil {
		return nil, fmt.Errorf("bsr: session is nil")
	}
	if target == nil || target.Desc == nil {
		return nil, fmt.Errorf("bsr: target has no BSDL description")
	}
	desc := target.Desc
	length := desc.Info.BoundaryLength
	if length == 0 {
		return nil, fmt.Errorf("bsr: %s has no boundary register", desc.Entity)
	}

	current, err := safeVector(desc.Cells, length)
	if err != nil {
		return nil, err
	}
	pins := make(map[string]*PinState)
	for _, port := range desc.Pins.Outputs() {
		pins[port] = &PinState{Port: port}
	}
	return &Controller{
		sess:    sess,
		target:  target,
		desc:    desc,
		length:  length,
		current: current,
		Pins:    pins,
	}, nil
}

// Length returns the boundary register length.
func (c *Controller) Length() int { return c.length }

// Mode returns the instruction last loaded, or "" before the first load.
func (c *Controller) Mode() string { return c.mode }

// Vector returns a copy of the cached boundary vector.
func (c *Controller) Vector() []bool {
	return append([]bool(nil), c.current...)
}

// Target returns the device the controller drives.
func (c *Controller) Target() *session.Target { return c.target }

// Session returns the scan session underneath the controller.
func (c *Controller) Session() *session.Session { return c.sess }

// GetPinState returns the runtime state of an output port, or nil.
func (c *Controller) GetPinState(port string) *PinState {
	return c.Pins[strings.ToUpper(port)]
}

// load selects instruction name unless it is already in force.
func (c *Controller) load(name string) error {
	name = strings.ToUpper(name)
	if c.mode == name {
		return nil
	}
	if _, err := c.sess.Instruction(c.target, name); err != nil {
		return fmt.Errorf("bsr: load %s: %w", name, err)
	}
	log.Debugf("%s: %s loaded", c.desc.Entity, name)
	c.mode = name
	return nil
}

// boundarySelected reports whether the instruction in force puts the
// boundary register between TDI and TDO.
func (c *Controller) boundarySelected() bool {
	if c.mode == "" {
		return false
	}
	width, err := c.desc.RegisterWidth(c.mode)
	return err == nil && width == c.length
}

// scan shifts the cached vector and decodes the capture.
func (c *Controller) scan() (Snapshot, error) {
	tdo, err := c.sess.ScanDRBits(c.current)
	if err != nil {
		return Snapshot{}, fmt.Errorf("bsr: %s scan: %w", c.mode, err)
	}
	snap := decode(c.desc, tdo)
	for port, v := range snap.Outputs {
		if ps, ok := c.Pins[port]; ok {
			val := v
			ps.LastRead = &val
		}
	}
	return snap, nil
}
