package device

import "github.com/OpenTraceLab/ttjtag/pkg/shiftreg"

// IDCode is the value captured into the IDCODE register: version 3, part
// 0x002A, manufacturer 0x77E.
const IDCode uint32 = 0x3002AEFD

// Data register widths.
const (
	IDCodeLength = 32
	BypassLength = 1
)

// dataRegisters is the bank of registers selectable between TDI and TDO.
type dataRegisters struct {
	idcode *shiftreg.Register
	bypass *shiftreg.Register
	bsr    *boundaryRegister
}

func newDataRegisters() dataRegisters {
	return dataRegisters{
		idcode: shiftreg.New(IDCodeLength, uint64(IDCode)),
		bypass: shiftreg.New(BypassLength, 0),
		bsr:    newBoundaryRegister(),
	}
}

// selected returns the register between TDI and TDO for instr.
func (d *dataRegisters) selected(instr Instruction) *shiftreg.Register {
	switch instr {
	case IDCODE:
		return d.idcode
	case SAMPLE, EXTEST, INTEST:
		return d.bsr.reg
	default:
		return d.bypass
	}
}

// capture loads the selected register. Only the selected register changes.
func (d *dataRegisters) capture(instr Instruction, ui, core uint8) {
	switch reg := d.selected(instr); reg {
	case d.idcode:
		reg.Capture(uint64(IDCode))
	case d.bsr.reg:
		reg.Capture(d.bsr.captureValue(instr, ui, core))
	default:
		reg.Capture(0)
	}
}

// updateChecked reports whether a short or long scan into the register should
// be flagged. IDCODE and BYPASS have no update effect, so any number of bits
// may be flushed through them.
func (d *dataRegisters) updateChecked(reg *shiftreg.Register) bool {
	return reg == d.bsr.reg
}

func (d *dataRegisters) reset() {
	d.idcode.Reset()
	d.bypass.Reset()
	d.bsr.reg.Reset()
}

// DataRegisterWidth returns the length of the register instr places between
// TDI and TDO.
func DataRegisterWidth(instr Instruction) int {
	switch instr {
	case IDCODE:
		return IDCodeLength
	case SAMPLE, EXTEST, INTEST:
		return BoundaryLength
	default:
		return BypassLength
	}
}
