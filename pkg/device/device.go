package device

import (
	"fmt"

	"github.com/OpenTraceLab/ttjtag/pkg/shiftreg"
	"github.com/OpenTraceLab/ttjtag/pkg/tap"
)

// Config controls optional behaviour of the device model.
type Config struct {
	// Strict enables the hardware assertions. A failing assertion panics
	// with a Violation.
	Strict bool
}

// DefaultConfig returns the configuration used by the tools.
func DefaultConfig() Config {
	return Config{Strict: true}
}

// Device is the cycle model of the counter peripheral and its TAP. Each call
// to Clock is one rising edge of TCK; all registers take their next value
// from the state before the edge.
type Device struct {
	cfg Config

	state  tap.State
	shadow *tap.StateMachine

	ir   *instructionRegister
	dr   dataRegisters
	core Core

	// pending holds a protocol violation seen on Update. It is raised once
	// the TMS=1 run that followed breaks, and dropped if the run reaches
	// Test-Logic-Reset.
	pending *Violation

	cycles uint64
}

// padFault, when set, rewrites the pads Outputs reports. It stands in for a
// broken output isolation path.
var padFault func(Outputs) Outputs

// New returns a device in its power-on state.
func New(cfg Config) *Device {
	d := &Device{
		cfg:    cfg,
		shadow: tap.NewStateMachine(),
		ir:     newInstructionRegister(),
		dr:     newDataRegisters(),
	}
	d.reset()
	return d
}

// State returns the TAP controller state.
func (d *Device) State() tap.State { return d.state }

// IR returns the committed instruction register value as shifted.
func (d *Device) IR() uint8 { return d.ir.raw() }

// Instruction returns the instruction in force.
func (d *Device) Instruction() Instruction { return d.ir.instruction() }

// Count returns the counter value.
func (d *Device) Count() uint8 { return d.core.Count() }

// Boundary returns the update stage of the boundary-scan register.
func (d *Device) Boundary() uint64 { return d.dr.bsr.reg.Updated() }

// Cycles returns the number of edges clocked since New.
func (d *Device) Cycles() uint64 { return d.cycles }

// Outputs returns the pad values for the current state and input pads. It is
// purely combinational and does not advance the device.
func (d *Device) Outputs(in Inputs) Outputs {
	instr := d.ir.instruction()

	var out Outputs
	switch instr {
	case EXTEST, CLAMP:
		out.UO = d.dr.bsr.outputs()
	case INTEST:
		// Pads isolated; the core sees the boundary stimulus instead.
	default:
		out.UO = d.core.Output(in.UI)
	}

	switch d.state {
	case tap.StateShiftIR:
		out.TDO = d.ir.reg.Out()
	case tap.StateShiftDR:
		out.TDO = d.dr.selected(instr).Out()
	}
	if padFault != nil {
		out = padFault(out)
	}
	return out
}

// coreInputs is the ui_in value the core observes.
func (d *Device) coreInputs(ui uint8) uint8 {
	if d.ir.instruction() == INTEST {
		return d.dr.bsr.inputs()
	}
	return ui
}

// Clock applies one rising edge with the given pads. It returns the outputs as
// they were at the edge, before any register changed.
func (d *Device) Clock(in Inputs) Outputs {
	out := d.Outputs(in)
	d.cycles++

	if in.Reset {
		d.reset()
		return out
	}

	instr := d.ir.instruction()
	coreIn := d.coreInputs(in.UI)
	coreOut := d.core.Output(coreIn)
	count := d.core.next(coreIn)

	cur := d.state
	switch cur {
	case tap.StateShiftIR:
		d.ir.reg.ShiftIn(in.TDI())
	case tap.StateShiftDR:
		d.dr.selected(instr).ShiftIn(in.TDI())
	}

	next := tap.NextState(cur, in.TMS())
	if shadow := d.shadow.Clock(in.TMS()); d.cfg.Strict && shadow != next {
		raise(ViolationTransition, cur, "moved to %s, mode-select history gives %s", next, shadow)
	}
	if d.pending != nil {
		switch {
		case !in.TMS():
			v := *d.pending
			d.pending = nil
			raise(v.Kind, v.State, "%s", v.Detail)
		case next == tap.StateTestLogicReset:
			log.Debugf("TAP reset, dropped %v", *d.pending)
			d.pending = nil
		}
	}

	switch next {
	case tap.StateCaptureIR:
		d.ir.capture(next)
	case tap.StateCaptureDR:
		d.dr.capture(instr, in.UI, coreOut)
	case tap.StateUpdateIR:
		d.checkScan(next, d.ir.reg)
		d.ir.reg.Update()
		log.Debugf("IR <- %#x (%s)", d.ir.raw(), d.ir.instruction())
	case tap.StateUpdateDR:
		reg := d.dr.selected(instr)
		if d.dr.updateChecked(reg) {
			d.checkScan(next, reg)
		}
		reg.Update()
		if reg == d.dr.bsr.reg {
			log.Debugf("BSR <- %#07x (%s)", reg.Updated(), instr)
		}
	case tap.StateTestLogicReset:
		if cur != tap.StateTestLogicReset {
			log.Debugf("TAP reset, instruction %s", IDCODE)
		}
		d.ir.force()
	}
	if next != cur {
		log.Tracef("TAP %s -> %s", cur, next)
	}

	d.state = next
	d.core.count = count

	if d.cfg.Strict && d.ir.instruction() == INTEST {
		if o := d.Outputs(in); !o.Isolated() {
			raise(ViolationIsolation, next, "uo_out=%#x uio_out=%#x uio_oe=%#x", o.UO, o.UIO, o.UIOOE)
		}
	}
	return out
}

// checkScan flags an update after a scan of the wrong length. A scan that
// shifted nothing updates the captured value and is legal. The violation is
// held until the next TMS=0 edge: five TMS=1 clocks from a shift state pass
// through Update after one bit and must still reset the TAP.
func (d *Device) checkScan(state tap.State, reg *shiftreg.Register) {
	if !d.cfg.Strict {
		return
	}
	if n := reg.Shifted(); n != 0 && n != reg.Width() {
		d.pending = &Violation{
			Kind:   ViolationProtocol,
			State:  state,
			Detail: fmt.Sprintf("%d bits shifted into %d-bit register", n, reg.Width()),
		}
	}
}

// reset puts every register at its power-on value, as the reset line does.
func (d *Device) reset() {
	d.state = tap.StateTestLogicReset
	d.pending = nil
	d.shadow.Force(tap.StateTestLogicReset)
	d.ir.reg.Reset()
	d.dr.reset()
	d.core.reset()
}
