package device

import "github.com/OpenTraceLab/ttjtag/pkg/shiftreg"

// Boundary-scan register layout. Cells are numbered from the TDO end.
const (
	BoundaryLength = 26
	BusWidth       = 8

	// InputOffset is the first cell mirroring ui_in[0].
	InputOffset = 2
	// BidirOffset is the first cell of the bidirectional mirror. The cells
	// are present in the scan path but not connected to any pad.
	BidirOffset = 10
	// OutputOffset is the first cell mirroring uo_out[0].
	OutputOffset = 18
)

const (
	inputMask  = uint64(0xFF) << InputOffset
	outputMask = uint64(0xFF) << OutputOffset
)

// BoundaryVector assembles a boundary-scan value from the input and output
// bus segments. Reserved cells are zero.
func BoundaryVector(inputs, outputs uint8) uint64 {
	return uint64(inputs)<<InputOffset | uint64(outputs)<<OutputOffset
}

// BoundaryInputs extracts the ui_in segment of a boundary-scan value.
func BoundaryInputs(v uint64) uint8 {
	return uint8(shiftreg.Field(v, InputOffset, BusWidth))
}

// BoundaryOutputs extracts the uo_out segment of a boundary-scan value.
func BoundaryOutputs(v uint64) uint8 {
	return uint8(shiftreg.Field(v, OutputOffset, BusWidth))
}

type boundaryRegister struct {
	reg *shiftreg.Register
}

func newBoundaryRegister() *boundaryRegister {
	return &boundaryRegister{reg: shiftreg.New(BoundaryLength, 0)}
}

// captureValue is what Capture-DR loads for the given instruction. The output
// segment always observes the core. Under INTEST the remaining cells keep the
// last update so the injected stimulus reads back; otherwise the input segment
// samples the pads and reserved cells read zero.
func (b *boundaryRegister) captureValue(instr Instruction, ui, core uint8) uint64 {
	var v uint64
	if instr == INTEST {
		v = b.reg.Updated() &^ outputMask
	} else {
		v = uint64(ui) << InputOffset
	}
	return v | uint64(core)<<OutputOffset
}

// inputs is the stimulus INTEST applies to the core.
func (b *boundaryRegister) inputs() uint8 { return BoundaryInputs(b.reg.Updated()) }

// outputs is the value EXTEST and CLAMP drive onto uo_out.
func (b *boundaryRegister) outputs() uint8 { return BoundaryOutputs(b.reg.Updated()) }
