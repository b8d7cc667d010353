package jtag

import (
	"fmt"
	"sync"

	"github.com/OpenTraceLab/ttjtag/pkg/device"
	"github.com/OpenTraceLab/ttjtag/pkg/tap"
)

// Fixture is the board around the device. It decides what the ui_in pads see
// given what the device drives.
type Fixture interface {
	Inputs(out device.Outputs) uint8
}

// StaticInputs holds ui_in at a fixed value, like a row of DIP switches.
type StaticInputs uint8

func (s StaticInputs) Inputs(device.Outputs) uint8 { return uint8(s) }

// Loopback wires outputs back to inputs: ui_in[i] follows uo_out[Map[i]].
// A negative entry leaves the input pulled low.
type Loopback struct {
	Map [device.BusWidth]int
}

// StraightLoopback connects uo_out[i] to ui_in[i].
func StraightLoopback() *Loopback {
	l := &Loopback{}
	for i := range l.Map {
		l.Map[i] = i
	}
	return l
}

func (l *Loopback) Inputs(out device.Outputs) uint8 {
	var ui uint8
	for in, src := range l.Map {
		if src >= 0 && src < device.BusWidth && out.UO&(1<<uint(src)) != 0 {
			ui |= 1 << uint(in)
		}
	}
	return ui
}

// DeviceAdapter drives a simulated device one TCK edge per bit. The fixture
// is evaluated once per edge against the pads as they settled after the
// previous edge, so loopback wiring cannot form a combinational loop.
type DeviceAdapter struct {
	mu      sync.Mutex
	dev     *device.Device
	fixture Fixture
	ui      uint8
	speedHz int
}

// NewDeviceAdapter wraps dev. A nil fixture holds ui_in low.
func NewDeviceAdapter(dev *device.Device, fixture Fixture) *DeviceAdapter {
	if fixture == nil {
		fixture = StaticInputs(0)
	}
	a := &DeviceAdapter{dev: dev, fixture: fixture, speedHz: 1_000_000}
	a.settle()
	return a
}

// Device returns the simulated device.
func (a *DeviceAdapter) Device() *device.Device {
	return a.dev
}

// SetFixture replaces the board wiring.
func (a *DeviceAdapter) SetFixture(f Fixture) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f == nil {
		f = StaticInputs(0)
	}
	a.fixture = f
	a.settle()
}

// Pads returns the current pad values with TMS and TDI low.
func (a *DeviceAdapter) Pads() (device.Inputs, device.Outputs) {
	a.mu.Lock()
	defer a.mu.Unlock()
	in := device.Inputs{UI: a.ui}
	return in, a.dev.Outputs(in)
}

func (a *DeviceAdapter) Info() (AdapterInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AdapterInfo{
		Name:         "simulator",
		Vendor:       "OpenTraceLab",
		Model:        device.Entity,
		MinFrequency: 1,
		MaxFrequency: 100_000_000,
		SupportsSRST: true,
		Notes:        fmt.Sprintf("cycle model, %s", fixtureName(a.fixture)),
	}, nil
}

func (a *DeviceAdapter) ShiftIR(tms, tdi []byte, bits int) ([]byte, error) {
	return a.shift(ShiftRegionIR, tms, tdi, bits)
}

func (a *DeviceAdapter) ShiftDR(tms, tdi []byte, bits int) ([]byte, error) {
	return a.shift(ShiftRegionDR, tms, tdi, bits)
}

func (a *DeviceAdapter) ResetTAP(hard bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if hard {
		log.Debugf("simulator: reset line pulsed")
		a.clock(device.Inputs{UI: a.ui, Reset: true})
		return nil
	}
	for i := 0; i < tap.ResetClocks; i++ {
		a.clock(device.Inputs{UI: a.ui}.WithTAP(true, false))
	}
	return nil
}

func (a *DeviceAdapter) SetSpeed(hz int) error {
	info, _ := a.Info()
	if err := checkSpeed(info, hz); err != nil {
		return err
	}
	a.mu.Lock()
	a.speedHz = hz
	a.mu.Unlock()
	return nil
}

// Speed returns the nominal TCK rate. The model is not paced.
func (a *DeviceAdapter) Speed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speedHz
}

func (a *DeviceAdapter) shift(region ShiftRegion, tms, tdi []byte, bits int) ([]byte, error) {
	required, err := ValidateShiftBuffers(tms, tdi, bits)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	tdo := make([]byte, required)
	for i := 0; i < bits; i++ {
		out := a.clock(device.Inputs{UI: a.ui}.WithTAP(bitAt(tms, i), bitAt(tdi, i)))
		if out.TDO {
			tdo[i/8] |= 1 << (uint(i) % 8)
		}
	}
	log.Tracef("simulator: %s shift %d bits, TAP %s", region, bits, a.dev.State())
	return tdo, nil
}

// clock applies one edge and lets the board settle. Callers hold mu.
func (a *DeviceAdapter) clock(in device.Inputs) device.Outputs {
	out := a.dev.Clock(in)
	a.settle()
	return out
}

func (a *DeviceAdapter) settle() {
	a.ui = a.fixture.Inputs(a.dev.Outputs(device.Inputs{UI: a.ui}))
}

func fixtureName(f Fixture) string {
	switch f := f.(type) {
	case StaticInputs:
		return fmt.Sprintf("ui_in=%#02x", uint8(f))
	case *Loopback:
		return "loopback"
	default:
		return fmt.Sprintf("%T", f)
	}
}
