package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/OpenTraceLab/ttjtag/pkg/jtag"
	"github.com/OpenTraceLab/ttjtag/pkg/tap"
)

// ErrWidth is returned for a scan width the session cannot carry.
var ErrWidth = errors.New("session: invalid scan width")

// MaxScanWidth is the longest scan ScanIR and ScanDR accept.
const MaxScanWidth = 64

// Session drives a single TAP through an adapter. It tracks the controller
// with a host-side state machine and turns each operation into one TMS/TDI
// vector, so every scan starts and ends in Run-Test/Idle.
type Session struct {
	mu      sync.Mutex
	adapter jtag.Adapter
	tap     *tap.StateMachine
	repo    Repository

	// lost is set when a shift failed part way. The adapter may have
	// clocked some of the vector, so the next operation resets first.
	lost bool
}

// New wires adapter to a session. The TAP state is unknown until Reset.
func New(adapter jtag.Adapter, repo Repository) *Session {
	return &Session{adapter: adapter, tap: tap.NewStateMachine(), repo: repo}
}

// Adapter returns the underlying adapter.
func (s *Session) Adapter() jtag.Adapter { return s.adapter }

// Repository returns the BSDL repository used by Identify.
func (s *Session) Repository() Repository { return s.repo }

// State returns the tracked TAP state.
func (s *Session) State() tap.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tap.State()
}

// Reset puts the TAP in Test-Logic-Reset and then Run-Test/Idle. With hard
// set the adapter pulses the reset line first; adapters without one fall
// back to the TMS sequence alone.
func (s *Session) Reset(hard bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hard {
		if err := s.adapter.ResetTAP(true); err != nil && !errors.Is(err, jtag.ErrNotImplemented) {
			return fmt.Errorf("session: hard reset: %w", err)
		}
	}
	s.tap.Force(tap.StateTestLogicReset)
	tms := s.tap.Reset().TMS
	idle, err := s.tap.GoTo(tap.StateRunTestIdle)
	if err != nil {
		return err
	}
	tms = append(tms, idle.TMS...)
	if _, err := s.dispatch(jtag.ShiftRegionDR, tms, nil); err != nil {
		s.lost = true
		return fmt.Errorf("session: reset: %w", err)
	}
	s.lost = false
	log.Debugf("TAP reset (hard=%v)", hard)
	return nil
}

// Idle clocks cycles TCK edges in Run-Test/Idle.
func (s *Session) Idle(cycles int) error {
	if cycles <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tms := s.resync()
	seq, err := s.tap.GoTo(tap.StateRunTestIdle)
	if err != nil {
		return err
	}
	tms = append(tms, seq.TMS...)
	tms = append(tms, make([]bool, cycles)...)
	s.tap.ClockAll(make([]bool, cycles))
	if _, err := s.dispatch(jtag.ShiftRegionDR, tms, nil); err != nil {
		s.lost = true
		return fmt.Errorf("session: idle: %w", err)
	}
	s.lost = false
	return nil
}

// ScanIR shifts the low width bits of value into the instruction register
// and returns the captured bits.
func (s *Session) ScanIR(value uint64, width int) (uint64, error) {
	if width < 0 || width > MaxScanWidth {
		return 0, fmt.Errorf("%w: %d", ErrWidth, width)
	}
	out, err := s.scan(jtag.ShiftRegionIR, jtag.Uint64Bits(value, width))
	if err != nil {
		return 0, err
	}
	return jtag.BitsUint64(out), nil
}

// ScanDR shifts the low width bits of value through the selected data
// register and returns the captured bits.
func (s *Session) ScanDR(value uint64, width int) (uint64, error) {
	if width < 0 || width > MaxScanWidth {
		return 0, fmt.Errorf("%w: %d", ErrWidth, width)
	}
	out, err := s.scan(jtag.ShiftRegionDR, jtag.Uint64Bits(value, width))
	if err != nil {
		return 0, err
	}
	return jtag.BitsUint64(out), nil
}

// ScanDRBits is ScanDR for registers of any length.
func (s *Session) ScanDRBits(bits []bool) ([]bool, error) {
	return s.scan(jtag.ShiftRegionDR, bits)
}

// scan builds enter + data + exit as one vector. An empty scan passes
// Capture straight to Exit1, which updates the captured value.
func (s *Session) scan(region jtag.ShiftRegion, data []bool) ([]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, exit1 := tap.StateShiftDR, tap.StateExit1DR
	if region == jtag.ShiftRegionIR {
		shift, exit1 = tap.StateShiftIR, tap.StateExit1IR
	}
	target := shift
	if len(data) == 0 {
		target = exit1
	}

	reset := s.resync()
	enter, err := tap.Path(s.tap.State(), target)
	if err != nil {
		return nil, err
	}
	leave, err := tap.Path(exit1, tap.StateRunTestIdle)
	if err != nil {
		return nil, err
	}

	tms := append(reset, enter.TMS...)
	tdi := make([]bool, len(tms), len(tms)+len(data)+len(leave.TMS))
	off := len(tms)
	for i, bit := range data {
		tms = append(tms, i == len(data)-1)
		tdi = append(tdi, bit)
	}
	tms = append(tms, leave.TMS...)
	tdi = append(tdi, make([]bool, len(leave.TMS))...)

	tdo, err := s.dispatch(region, tms, tdi)
	if err != nil {
		s.lost = true
		return nil, fmt.Errorf("session: %s scan: %w", region, err)
	}
	s.lost = false
	if end := s.tap.ClockAll(tms).Final(); end != tap.StateRunTestIdle {
		return nil, fmt.Errorf("session: scan ended in %s", end)
	}
	out := jtag.UnpackBits(tdo, len(tms))[off : off+len(data)]
	log.Tracef("%s scan %d bits", region, len(data))
	return out, nil
}

// resync returns the reset sequence to prefix to the next vector when an
// earlier shift failed, and moves the tracker to Test-Logic-Reset.
func (s *Session) resync() []bool {
	if !s.lost {
		return nil
	}
	log.Warnf("TAP state lost after a failed shift, resetting")
	s.tap.Force(tap.StateTestLogicReset)
	return s.tap.Reset().TMS
}

func (s *Session) dispatch(region jtag.ShiftRegion, tms, tdi []bool) ([]byte, error) {
	if len(tms) == 0 {
		return nil, nil
	}
	tdiBytes := jtag.PackBits(tdi)
	if tdiBytes == nil {
		tdiBytes = make([]byte, (len(tms)+7)/8)
	}
	if region == jtag.ShiftRegionIR {
		return s.adapter.ShiftIR(jtag.PackBits(tms), tdiBytes, len(tms))
	}
	return s.adapter.ShiftDR(jtag.PackBits(tms), tdiBytes, len(tms))
}
