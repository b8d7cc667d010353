package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/ttjtag/pkg/bsdl"
	"github.com/OpenTraceLab/ttjtag/pkg/idcode"
	"github.com/OpenTraceLab/ttjtag/pkg/idcode/deviceinfo"
)

// Target is an identified device with its description.
type Target struct {
	IDCode uint32
	Part   idcode.IDCode
	Info   deviceinfo.DeviceInfo
	Desc   *bsdl.Description
}

// Name returns the BSDL entity name, or the database name when no
// description was found.
func (t *Target) Name() string {
	if t.Desc != nil {
		return t.Desc.Entity
	}
	return t.Info.Name
}

// IRLength returns the instruction register length.
func (t *Target) IRLength() int {
	if t.Desc != nil {
		return t.Desc.Info.InstructionLength
	}
	return t.Info.IRLength
}

// Opcode returns the opcode of the named instruction.
func (t *Target) Opcode(name string) (uint64, error) {
	if t.Desc == nil {
		return 0, fmt.Errorf("session: %s: no BSDL description", t.Name())
	}
	return t.Desc.Opcode(name)
}

// RegisterWidth returns the data register length the named instruction
// selects.
func (t *Target) RegisterWidth(name string) (int, error) {
	if t.Desc == nil {
		return 0, fmt.Errorf("session: %s: no BSDL description", t.Name())
	}
	return t.Desc.RegisterWidth(name)
}

// ReadIDCode resets the TAP, which selects IDCODE, and reads the 32-bit
// identification register.
func (s *Session) ReadIDCode() (uint32, error) {
	if err := s.Reset(false); err != nil {
		return 0, err
	}
	id, err := s.ScanDR(0, 32)
	if err != nil {
		return 0, err
	}
	log.Debugf("IDCODE %#08x", id)
	return uint32(id), nil
}

// Identify reads the IDCODE, validates it and resolves its description and
// database entry. A device without a BSDL description is still returned,
// along with an error wrapping ErrNotFound.
func (s *Session) Identify() (*Target, error) {
	raw, err := s.ReadIDCode()
	if err != nil {
		return nil, err
	}
	part := idcode.ParseIDCode(raw)
	if err := part.Validate(); err != nil {
		return nil, fmt.Errorf("session: read %#08x: %w", raw, err)
	}
	t := &Target{IDCode: raw, Part: part, Info: deviceinfo.Lookup(raw)}
	if s.repo == nil {
		return t, fmt.Errorf("%w %#08x", ErrNotFound, raw)
	}
	desc, err := s.repo.Lookup(raw)
	if err != nil {
		return t, err
	}
	t.Desc = desc
	log.Infof("identified %s (%s)", t.Name(), part)
	return t, nil
}

// Instruction loads the named instruction of t and returns the captured IR
// bits.
func (s *Session) Instruction(t *Target, name string) (uint64, error) {
	op, err := t.Opcode(name)
	if err != nil {
		return 0, err
	}
	capture, err := s.ScanIR(op, t.IRLength())
	if err != nil {
		return 0, err
	}
	if t.Desc != nil {
		if want, mask, ok := captureBits(t.Desc.Info.InstructionCapture); ok && uint32(capture)&mask != want&mask {
			return capture, fmt.Errorf("session: %s: IR capture %#x does not match %s", strings.ToUpper(name), capture, t.Desc.Info.InstructionCapture)
		}
	}
	return capture, nil
}

func captureBits(pattern string) (value, mask uint32, ok bool) {
	if pattern == "" {
		return 0, 0, false
	}
	value, mask, _ = bsdl.ParseBinaryString(pattern)
	return value, mask, true
}

// IsNotFound reports whether err means no description was found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
