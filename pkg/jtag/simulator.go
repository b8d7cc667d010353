package jtag

import "fmt"

// ShiftRegion tells which register a shift call was made for.
type ShiftRegion uint8

const (
	ShiftRegionIR ShiftRegion = iota
	ShiftRegionDR
)

func (r ShiftRegion) String() string {
	if r == ShiftRegionIR {
		return "IR"
	}
	return "DR"
}

// ShiftHook supplies TDO for a recorded shift.
type ShiftHook func(region ShiftRegion, tms, tdi []byte, bits int) ([]byte, error)

// ShiftOp is one recorded shift call.
type ShiftOp struct {
	Region ShiftRegion
	TMS    []byte
	TDI    []byte
	Bits   int
}

// SimAdapter records every call for tests. TDO comes from OnShift, or echoes
// TDI when no hook is set.
type SimAdapter struct {
	InfoData AdapterInfo
	SpeedHz  int
	OnShift  ShiftHook

	history   []ShiftOp
	resets    int
	hardReset int
}

// NewSimAdapter returns a recorder reporting info.
func NewSimAdapter(info AdapterInfo) *SimAdapter {
	return &SimAdapter{InfoData: info}
}

// History returns the recorded shifts, oldest first.
func (s *SimAdapter) History() []ShiftOp {
	return append([]ShiftOp(nil), s.history...)
}

// LastShift returns the most recent shift.
func (s *SimAdapter) LastShift() ShiftOp {
	if len(s.history) == 0 {
		return ShiftOp{}
	}
	return s.history[len(s.history)-1]
}

// ClockedTMS concatenates the TMS bits of every recorded shift.
func (s *SimAdapter) ClockedTMS() []bool {
	var out []bool
	for _, op := range s.history {
		out = append(out, UnpackBits(op.TMS, op.Bits)...)
	}
	return out
}

// ResetCounts returns the total number of resets and how many were hard.
func (s *SimAdapter) ResetCounts() (total, hard int) {
	return s.resets, s.hardReset
}

func (s *SimAdapter) Info() (AdapterInfo, error) {
	return s.InfoData, nil
}

func (s *SimAdapter) ShiftIR(tms, tdi []byte, bits int) ([]byte, error) {
	return s.shift(ShiftRegionIR, tms, tdi, bits)
}

func (s *SimAdapter) ShiftDR(tms, tdi []byte, bits int) ([]byte, error) {
	return s.shift(ShiftRegionDR, tms, tdi, bits)
}

func (s *SimAdapter) ResetTAP(hard bool) error {
	s.resets++
	if hard {
		s.hardReset++
	}
	return nil
}

func (s *SimAdapter) SetSpeed(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("jtag: invalid speed %dHz", hz)
	}
	s.SpeedHz = hz
	return nil
}

func (s *SimAdapter) shift(region ShiftRegion, tms, tdi []byte, bits int) ([]byte, error) {
	required, err := ValidateShiftBuffers(tms, tdi, bits)
	if err != nil {
		return nil, err
	}
	s.history = append(s.history, ShiftOp{
		Region: region,
		TMS:    append([]byte(nil), tms...),
		TDI:    append([]byte(nil), tdi...),
		Bits:   bits,
	})
	if s.OnShift != nil {
		return s.OnShift(region, tms, tdi, bits)
	}
	tdo := make([]byte, required)
	copy(tdo, tdi)
	return tdo, nil
}
