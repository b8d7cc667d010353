package bsdl

import (
	"fmt"
	"strings"
)

// Description is the part of a BSDL file a boundary-scan runtime needs.
type Description struct {
	Entity       string
	Info         DeviceInfo
	TAP          TAPConfig
	Instructions []Instruction
	Cells        []BoundaryCell
	Pins         *PinMapping
	Access       map[string]string
}

// Describe validates a parsed file and collects its attributes.
func Describe(f *File) (*Description, error) {
	if f == nil || f.Entity == nil {
		return nil, fmt.Errorf("bsdl: no entity")
	}
	e := f.Entity
	d := &Description{
		Entity:       e.Name,
		Info:         *e.DeviceInfo(),
		TAP:          *e.TAPConfig(),
		Instructions: e.Instructions(),
		Access:       e.RegisterAccess(),
	}
	if d.Info.InstructionLength <= 0 {
		return nil, fmt.Errorf("bsdl: %s: INSTRUCTION_LENGTH missing", e.Name)
	}
	if len(d.Instructions) == 0 {
		return nil, fmt.Errorf("bsdl: %s: INSTRUCTION_OPCODE missing", e.Name)
	}
	for _, in := range d.Instructions {
		if len(in.Opcode) != d.Info.InstructionLength {
			return nil, fmt.Errorf("bsdl: %s: opcode %s (%s) is not %d bits", e.Name, in.Name, in.Opcode, d.Info.InstructionLength)
		}
	}
	if d.Info.BoundaryLength > 0 {
		cells, err := e.BoundaryCells()
		if err != nil {
			return nil, fmt.Errorf("bsdl: %s: %w", e.Name, err)
		}
		if len(cells) != d.Info.BoundaryLength {
			return nil, fmt.Errorf("bsdl: %s: %d boundary cells, BOUNDARY_LENGTH %d", e.Name, len(cells), d.Info.BoundaryLength)
		}
		d.Cells = cells
	}
	d.Pins = NewPinMapping(d.Cells)
	return d, nil
}

// Load parses and describes a BSDL source.
func Load(name string, src []byte) (*Description, error) {
	f, err := ParseBytes(name, src)
	if err != nil {
		return nil, err
	}
	return Describe(f)
}

// LoadFile parses and describes a BSDL file on disk.
func LoadFile(path string) (*Description, error) {
	f, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Describe(f)
}

// Opcode returns the first opcode of the named instruction.
func (d *Description) Opcode(name string) (uint64, error) {
	for _, in := range d.Instructions {
		if strings.EqualFold(in.Name, name) {
			return in.Value()
		}
	}
	return 0, fmt.Errorf("bsdl: %s has no %s instruction", d.Entity, name)
}

// IDCode returns the IDCODE_REGISTER value and the mask of specified bits.
func (d *Description) IDCode() (value, mask uint32, ok bool) {
	if len(d.Info.IDCode) == 0 {
		return 0, 0, false
	}
	value, mask, _ = ParseBinaryString(d.Info.IDCode)
	return value, mask, true
}

// MatchIDCode reports whether raw matches the described IDCODE.
func (d *Description) MatchIDCode(raw uint32) bool {
	value, mask, ok := d.IDCode()
	return ok && raw&mask == value&mask
}

// RegisterWidth returns the data register length selected by instruction,
// using REGISTER_ACCESS and the standard names.
func (d *Description) RegisterWidth(instruction string) (int, error) {
	reg := d.Access[strings.ToUpper(instruction)]
	if reg == "" {
		switch strings.ToUpper(instruction) {
		case "BYPASS", "CLAMP", "HIGHZ":
			reg = "BYPASS"
		case "IDCODE":
			reg = "DEVICE_ID"
		case "SAMPLE", "PRELOAD", "EXTEST", "INTEST":
			reg = "BOUNDARY"
		}
	}
	switch reg {
	case "BYPASS":
		return 1, nil
	case "DEVICE_ID":
		return 32, nil
	case "BOUNDARY":
		return d.Info.BoundaryLength, nil
	}
	return 0, fmt.Errorf("bsdl: %s: no register width for %s", d.Entity, instruction)
}
