package jtag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/ttjtag/pkg/device"
	"github.com/OpenTraceLab/ttjtag/pkg/tap"
)

// scanVector builds the TMS/TDI vectors for one scan starting and ending in
// Run-Test/Idle, and the offset of the first data bit.
func scanVector(t *testing.T, shift tap.State, v uint64, width int) (tms, tdi []bool, off int) {
	t.Helper()
	enter, err := tap.Path(tap.StateRunTestIdle, shift)
	require.NoError(t, err)
	tms = append(tms, enter.TMS...)
	tdi = make([]bool, len(tms))
	off = len(tms)
	for i := 0; i < width; i++ {
		tms = append(tms, i == width-1)
		tdi = append(tdi, v>>uint(i)&1 != 0)
	}
	exit, err := tap.Path(tap.NextState(shift, true), tap.StateRunTestIdle)
	require.NoError(t, err)
	tms = append(tms, exit.TMS...)
	tdi = append(tdi, make([]bool, len(exit.TMS))...)
	return tms, tdi, off
}

func runScan(t *testing.T, a *DeviceAdapter, ir bool, v uint64, width int) uint64 {
	t.Helper()
	shift, do := tap.StateShiftDR, a.ShiftDR
	if ir {
		shift, do = tap.StateShiftIR, a.ShiftIR
	}
	tms, tdi, off := scanVector(t, shift, v, width)
	tdo, err := do(PackBits(tms), PackBits(tdi), len(tms))
	require.NoError(t, err)
	require.Equal(t, tap.StateRunTestIdle, a.Device().State())
	return BitsUint64(UnpackBits(tdo, len(tms))[off : off+width])
}

func newIdleAdapter(t *testing.T, f Fixture) *DeviceAdapter {
	t.Helper()
	a := NewDeviceAdapter(device.New(device.DefaultConfig()), f)
	_, err := a.ShiftDR([]byte{0x00}, nil, 1)
	require.NoError(t, err)
	require.Equal(t, tap.StateRunTestIdle, a.Device().State())
	return a
}

func TestDeviceAdapterReadsIDCode(t *testing.T) {
	a := newIdleAdapter(t, nil)
	got := runScan(t, a, false, 0, device.IDCodeLength)
	require.Equal(t, uint64(device.IDCode), got)
}

func TestDeviceAdapterInstructionCapture(t *testing.T) {
	a := newIdleAdapter(t, nil)
	got := runScan(t, a, true, uint64(device.BYPASS), device.IRLength)
	require.Equal(t, uint64(device.IRCapture), got)
	require.Equal(t, device.BYPASS, a.Device().Instruction())
}

func TestDeviceAdapterStaticInputsSampled(t *testing.T) {
	a := newIdleAdapter(t, StaticInputs(0x5A))
	runScan(t, a, true, uint64(device.SAMPLE), device.IRLength)
	got := runScan(t, a, false, 0, device.BoundaryLength)
	require.Equal(t, uint8(0x5A), device.BoundaryInputs(got))

	in, _ := a.Pads()
	require.Equal(t, uint8(0x5A), in.UI)
}

func TestDeviceAdapterLoopbackFollowsExtest(t *testing.T) {
	a := newIdleAdapter(t, StraightLoopback())
	runScan(t, a, true, uint64(device.EXTEST), device.IRLength)
	runScan(t, a, false, device.BoundaryVector(0, 0xA5), device.BoundaryLength)

	_, out := a.Pads()
	require.Equal(t, uint8(0xA5), out.UO)

	got := runScan(t, a, false, device.BoundaryVector(0, 0xA5), device.BoundaryLength)
	require.Equal(t, uint8(0xA5), device.BoundaryInputs(got))
}

func TestLoopbackPermutation(t *testing.T) {
	l := &Loopback{Map: [device.BusWidth]int{7, 6, 5, 4, 3, 2, 1, -1}}
	got := l.Inputs(device.Outputs{UO: 0x81})
	require.Equal(t, uint8(0x01), got, "ui[0] follows uo[7], ui[7] is unconnected")
}

func TestDeviceAdapterResets(t *testing.T) {
	a := newIdleAdapter(t, nil)
	runScan(t, a, true, uint64(device.BYPASS), device.IRLength)

	require.NoError(t, a.ResetTAP(false))
	require.Equal(t, tap.StateTestLogicReset, a.Device().State())
	require.Equal(t, device.IDCODE, a.Device().Instruction())

	a = newIdleAdapter(t, nil)
	runScan(t, a, true, uint64(device.EXTEST), device.IRLength)
	runScan(t, a, false, device.BoundaryVector(0, 0xFF), device.BoundaryLength)
	require.NoError(t, a.ResetTAP(true))
	require.Equal(t, tap.StateTestLogicReset, a.Device().State())
	require.Zero(t, a.Device().Boundary())
}

func TestDeviceAdapterSpeed(t *testing.T) {
	a := NewDeviceAdapter(device.New(device.DefaultConfig()), nil)
	require.NoError(t, a.SetSpeed(4_000_000))
	require.Equal(t, 4_000_000, a.Speed())
	require.Error(t, a.SetSpeed(0))

	info, err := a.Info()
	require.NoError(t, err)
	require.Equal(t, device.Entity, info.Model)
}
