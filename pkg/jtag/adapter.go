package jtag

import (
	"errors"
	"fmt"
)

// AdapterInfo describes a probe or simulated TAP.
type AdapterInfo struct {
	Name         string
	Vendor       string
	Model        string
	SerialNumber string
	Firmware     string
	MinFrequency int // Hz
	MaxFrequency int // Hz
	SupportsSRST bool
	SupportsTRST bool
	Notes        string
}

// Adapter clocks TMS/TDI bit vectors into a TAP and returns TDO.
//
// Every bit is one TCK cycle with its own TMS value, so the caller owns the
// state machine. ShiftIR and ShiftDR differ only in what the caller is
// doing; an adapter may use the hint or ignore it. TDO bit i is sampled
// before edge i.
type Adapter interface {
	Info() (AdapterInfo, error)
	ShiftIR(tms, tdi []byte, bits int) (tdo []byte, err error)
	ShiftDR(tms, tdi []byte, bits int) (tdo []byte, err error)
	// ResetTAP with hard set pulses the reset line; otherwise it clocks
	// TMS high long enough to reach Test-Logic-Reset.
	ResetTAP(hard bool) error
	SetSpeed(hz int) error
}

// ErrNotImplemented is returned for capabilities a backend lacks.
var ErrNotImplemented = errors.New("jtag: not implemented")

// ValidateShiftBuffers checks that tms and tdi, when given, hold bits bits
// and returns the byte length of the vectors.
func ValidateShiftBuffers(tms, tdi []byte, bits int) (int, error) {
	if bits <= 0 {
		return 0, fmt.Errorf("jtag: bits must be positive, got %d", bits)
	}
	required := (bits + 7) / 8
	if len(tms) > 0 && len(tms) < required {
		return 0, fmt.Errorf("jtag: tms buffer too short, need %d bytes", required)
	}
	if len(tdi) > 0 && len(tdi) < required {
		return 0, fmt.Errorf("jtag: tdi buffer too short, need %d bytes", required)
	}
	return required, nil
}

func checkSpeed(info AdapterInfo, hz int) error {
	if hz <= 0 {
		return fmt.Errorf("jtag: invalid speed %dHz", hz)
	}
	if info.MaxFrequency > 0 && (hz < info.MinFrequency || hz > info.MaxFrequency) {
		return fmt.Errorf("jtag: %s: %dHz out of range [%d, %d]", info.Name, hz, info.MinFrequency, info.MaxFrequency)
	}
	return nil
}
