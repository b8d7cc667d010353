package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/ttjtag/pkg/device"
	"github.com/OpenTraceLab/ttjtag/pkg/jtag"
	"github.com/OpenTraceLab/ttjtag/pkg/tap"
)

func newDeviceSession(t *testing.T) (*Session, *device.Device) {
	t.Helper()
	dev := device.New(device.DefaultConfig())
	repo, err := DefaultRepository()
	require.NoError(t, err)
	s := New(jtag.NewDeviceAdapter(dev, jtag.StaticInputs(0)), repo)
	require.NoError(t, s.Reset(true))
	require.Equal(t, tap.StateRunTestIdle, dev.State())
	return s, dev
}

func TestReadIDCode(t *testing.T) {
	s, _ := newDeviceSession(t)
	id, err := s.ReadIDCode()
	require.NoError(t, err)
	require.Equal(t, device.IDCode, id)
	require.Equal(t, tap.StateRunTestIdle, s.State())
}

func TestIdentifyResolvesDescription(t *testing.T) {
	s, _ := newDeviceSession(t)
	target, err := s.Identify()
	require.NoError(t, err)
	require.Equal(t, device.Entity, target.Name())
	require.Equal(t, device.IRLength, target.IRLength())
	require.True(t, target.Info.Known)

	width, err := target.RegisterWidth("SAMPLE")
	require.NoError(t, err)
	require.Equal(t, device.BoundaryLength, width)
}

func TestIdentifyUnknownPart(t *testing.T) {
	dev := device.New(device.DefaultConfig())
	s := New(jtag.NewDeviceAdapter(dev, nil), NewMemoryRepository())
	target, err := s.Identify()
	require.Error(t, err)
	require.True(t, IsNotFound(err))
	require.NotNil(t, target)
	require.Equal(t, device.IDCode, target.IDCode)
}

func TestScanIRSelectsInstruction(t *testing.T) {
	s, dev := newDeviceSession(t)
	for _, instr := range device.Instructions {
		capture, err := s.ScanIR(uint64(instr), device.IRLength)
		require.NoError(t, err)
		require.Equal(t, uint64(device.IRCapture), capture)
		require.Equal(t, instr, dev.Instruction())
	}
}

func TestInstructionByName(t *testing.T) {
	s, dev := newDeviceSession(t)
	target, err := s.Identify()
	require.NoError(t, err)

	_, err = s.Instruction(target, "extest")
	require.NoError(t, err)
	require.Equal(t, device.EXTEST, dev.Instruction())

	_, err = s.Instruction(target, "HIGHZ")
	require.Error(t, err)
}

func TestScanDRBypassDelay(t *testing.T) {
	s, _ := newDeviceSession(t)
	_, err := s.ScanIR(uint64(device.BYPASS), device.IRLength)
	require.NoError(t, err)

	const p = 0xDEADBEEF
	out, err := s.ScanDR(p, 32)
	require.NoError(t, err)
	require.Equal(t, uint64(p<<1)&0xFFFFFFFF, out)
}

func TestScanDRBitsMatchesScanDR(t *testing.T) {
	s, dev := newDeviceSession(t)
	_, err := s.ScanIR(uint64(device.EXTEST), device.IRLength)
	require.NoError(t, err)

	v := device.BoundaryVector(0, 0x3C)
	_, err = s.ScanDRBits(jtag.Uint64Bits(v, device.BoundaryLength))
	require.NoError(t, err)
	require.Equal(t, v, dev.Boundary())
}

func TestEmptyScanKeepsCapture(t *testing.T) {
	s, dev := newDeviceSession(t)
	_, err := s.ScanIR(uint64(device.EXTEST), device.IRLength)
	require.NoError(t, err)
	_, err = s.ScanDR(device.BoundaryVector(0, 0xFF), device.BoundaryLength)
	require.NoError(t, err)

	out, err := s.ScanDR(0, 0)
	require.NoError(t, err)
	require.Zero(t, out)
	require.Equal(t, uint8(0), device.BoundaryInputs(dev.Boundary()))
	_, ok := device.DecodeSevenSegment(device.BoundaryOutputs(dev.Boundary()))
	require.True(t, ok, "update should commit the captured core output")
	require.Equal(t, tap.StateRunTestIdle, s.State())
}

func TestScanWidthLimits(t *testing.T) {
	s, _ := newDeviceSession(t)
	_, err := s.ScanDR(0, MaxScanWidth+1)
	require.True(t, errors.Is(err, ErrWidth), "got %v", err)
	_, err = s.ScanIR(0, -1)
	require.True(t, errors.Is(err, ErrWidth), "got %v", err)
}

func TestIdleClocksInRunTestIdle(t *testing.T) {
	s, dev := newDeviceSession(t)
	before := dev.Cycles()
	require.NoError(t, s.Idle(10))
	require.Equal(t, before+10, dev.Cycles())
	require.Equal(t, tap.StateRunTestIdle, dev.State())
}

func TestResetVectorOnRecorder(t *testing.T) {
	sim := jtag.NewSimAdapter(jtag.AdapterInfo{Name: "sim"})
	s := New(sim, nil)
	require.NoError(t, s.Reset(true))

	total, hard := sim.ResetCounts()
	require.Equal(t, 1, total)
	require.Equal(t, 1, hard)
	require.Equal(t, []bool{true, true, true, true, true, false}, sim.ClockedTMS())
}

func TestScanVectorShape(t *testing.T) {
	sim := jtag.NewSimAdapter(jtag.AdapterInfo{})
	s := New(sim, nil)
	require.NoError(t, s.Reset(false))

	out, err := s.ScanIR(0xA, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(0xA), out, "recorder echoes TDI")

	op := sim.LastShift()
	require.Equal(t, jtag.ShiftRegionIR, op.Region)
	// Select-DR, Select-IR, Capture-IR, Shift-IR, 4 data bits, Update-IR, Idle.
	want := []bool{true, true, false, false, false, false, false, true, true, false}
	require.Equal(t, want, jtag.UnpackBits(op.TMS, op.Bits))
}

func TestFailedShiftResetsBeforeNextScan(t *testing.T) {
	sim := jtag.NewSimAdapter(jtag.AdapterInfo{})
	s := New(sim, nil)
	require.NoError(t, s.Reset(false))

	fail := true
	sim.OnShift = func(_ jtag.ShiftRegion, _, tdi []byte, bits int) ([]byte, error) {
		if fail {
			fail = false
			return nil, errors.New("usb: transfer aborted")
		}
		return append([]byte(nil), tdi...), nil
	}
	_, err := s.ScanIR(0xA, 4)
	require.Error(t, err)

	out, err := s.ScanIR(0xA, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(0xA), out)
	require.Equal(t, tap.StateRunTestIdle, s.State())

	tms := jtag.UnpackBits(sim.LastShift().TMS, sim.LastShift().Bits)
	want := []bool{true, true, true, true, true, false, true, true, false, false, false, false, false, true, true, false}
	require.Equal(t, want, tms)

	// Only the first operation after the failure pays for the reset.
	_, err = s.ScanIR(0xA, 4)
	require.NoError(t, err)
	require.Len(t, jtag.UnpackBits(sim.LastShift().TMS, sim.LastShift().Bits), 10)
}

func TestTruncatedShiftResyncsDevice(t *testing.T) {
	s, dev := newDeviceSession(t)
	healthy := s.adapter

	// The link drops after Select-DR, Capture-DR and Shift-DR were clocked.
	sim := jtag.NewSimAdapter(jtag.AdapterInfo{})
	sim.OnShift = func(_ jtag.ShiftRegion, tms, tdi []byte, _ int) ([]byte, error) {
		if _, err := healthy.ShiftDR(tms, tdi, 3); err != nil {
			return nil, err
		}
		return nil, errors.New("usb: transfer aborted")
	}
	s.adapter = sim
	_, err := s.ScanDR(0, 32)
	require.Error(t, err)
	require.Equal(t, tap.StateShiftDR, dev.State())

	s.adapter = healthy
	id, err := s.ScanDR(0, 32)
	require.NoError(t, err)
	require.Equal(t, uint64(device.IDCode), id)
	require.Equal(t, tap.StateRunTestIdle, dev.State())
	require.Equal(t, tap.StateRunTestIdle, s.State())
}

func TestRepositoryLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "counter.bsd"), device.BSDL, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not bsdl"), 0o644))

	repo := NewMemoryRepository()
	require.NoError(t, repo.LoadDir(dir))
	require.Equal(t, 1, repo.Len())

	desc, err := repo.Lookup(device.IDCode)
	require.NoError(t, err)
	require.Equal(t, device.Entity, desc.Entity)

	// The version field is part of the match when the file specifies it.
	_, err = repo.Lookup(device.IDCode ^ 0x10000000)
	require.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestRepositoryLoadFilesReportsPath(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.bsd")
	require.NoError(t, os.WriteFile(bad, []byte("entity"), 0o644))
	err := NewMemoryRepository().LoadFiles(bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), bad)
}
