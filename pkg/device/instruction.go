package device

import (
	"fmt"

	"github.com/OpenTraceLab/ttjtag/pkg/shiftreg"
	"github.com/OpenTraceLab/ttjtag/pkg/tap"
)

// Instruction register geometry.
const (
	IRLength  = 4
	IRCapture = 0b0001
)

// Instruction is a decoded instruction register value.
type Instruction uint8

const (
	IDCODE Instruction = 0x0
	SAMPLE Instruction = 0x1
	EXTEST Instruction = 0x2
	INTEST Instruction = 0x3
	CLAMP  Instruction = 0x4
	BYPASS Instruction = 0xF
)

// Instructions lists the implemented instructions in opcode order.
var Instructions = []Instruction{IDCODE, SAMPLE, EXTEST, INTEST, CLAMP, BYPASS}

func (i Instruction) String() string {
	switch i {
	case IDCODE:
		return "IDCODE"
	case SAMPLE:
		return "SAMPLE"
	case EXTEST:
		return "EXTEST"
	case INTEST:
		return "INTEST"
	case CLAMP:
		return "CLAMP"
	case BYPASS:
		return "BYPASS"
	default:
		return fmt.Sprintf("Instruction(%#x)", uint8(i))
	}
}

// Decode maps a raw instruction register value to its instruction. Values
// without a defined instruction select BYPASS.
func Decode(v uint8) Instruction {
	switch Instruction(v & 0xF) {
	case IDCODE, SAMPLE, EXTEST, INTEST, CLAMP:
		return Instruction(v & 0xF)
	default:
		return BYPASS
	}
}

// ParseInstruction looks an instruction up by name.
func ParseInstruction(name string) (Instruction, error) {
	for _, in := range Instructions {
		if in.String() == name {
			return in, nil
		}
	}
	return 0, fmt.Errorf("device: unknown instruction %q", name)
}

// instructionRegister wraps the 4-bit scan cell. The update stage holds the
// raw committed value; the instruction in force is its decode.
type instructionRegister struct {
	reg *shiftreg.Register
}

// captureIR is the pattern loaded on Capture-IR.
var captureIR uint64 = IRCapture

func newInstructionRegister() *instructionRegister {
	return &instructionRegister{reg: shiftreg.New(IRLength, uint64(IDCODE))}
}

// capture loads the fixed capture pattern. The low two bits must read 01 so
// a host can find the IR boundaries in a scan.
func (ir *instructionRegister) capture(state tap.State) {
	ir.reg.Capture(captureIR)
	if ir.reg.Value()&0b11 != 0b01 {
		raise(ViolationDecode, state, "instruction capture %#04b", ir.reg.Value())
	}
}

func (ir *instructionRegister) raw() uint8 { return uint8(ir.reg.Updated()) }

func (ir *instructionRegister) instruction() Instruction { return Decode(ir.raw()) }

// force selects IDCODE, as on Test-Logic-Reset.
func (ir *instructionRegister) force() {
	ir.reg.Capture(uint64(IDCODE))
	ir.reg.Update()
}
