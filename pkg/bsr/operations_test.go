package bsr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/ttjtag/pkg/device"
	"github.com/OpenTraceLab/ttjtag/pkg/jtag"
)

func TestSampleObservesInputs(t *testing.T) {
	for _, ui := range []uint8{0x00, 0x5A, 0xFF} {
		r := newRig(t, jtag.StaticInputs(ui))
		snap, err := r.ctl.Sample()
		require.NoError(t, err)
		require.Equal(t, device.SAMPLE, r.dev.Instruction())
		require.Equal(t, uint64(ui), snap.InputBus("UI_IN", 8))
		require.Equal(t, device.BoundaryInputs(snap.Value()), ui)
	}
}

func TestSampleSeesOverrideDigit(t *testing.T) {
	const digit = 9
	r := newRig(t, jtag.StaticInputs(digit<<1|1))
	snap, err := r.ctl.Sample()
	require.NoError(t, err)
	got, ok := device.DecodeSevenSegment(uint8(snap.OutputBus("UO_OUT", 8)))
	require.True(t, ok)
	require.Equal(t, uint8(digit), got)
}

func TestPreloadThenExtest(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.ctl.Preload(BusValues("UO_OUT", 8, 0xC3)))
	require.Equal(t, device.SAMPLE, r.dev.Instruction())
	require.Equal(t, uint8(0xC3), device.BoundaryOutputs(r.dev.Boundary()))

	_, err := r.ctl.Extest()
	require.NoError(t, err)
	_, out := r.adapter.Pads()
	require.Equal(t, uint8(0xC3), out.UO)
	require.Equal(t, PinDriven, r.ctl.GetPinState("UO_OUT0").Mode)
	require.True(t, *r.ctl.GetPinState("UO_OUT7").DrivenVal)
}

func TestDrivePin(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.ctl.DrivePin("UO_OUT3", true))
	_, out := r.adapter.Pads()
	require.Equal(t, uint8(0x08), out.UO)

	require.NoError(t, r.ctl.DrivePin("uo_out5", true))
	require.NoError(t, r.ctl.DrivePin("UO_OUT3", false))
	_, out = r.adapter.Pads()
	require.Equal(t, uint8(0x20), out.UO)

	require.Error(t, r.ctl.DrivePin("UI_IN0", true))
	require.Error(t, r.ctl.DrivePin("NOPE", true))
}

func TestExtestLoopbackCapture(t *testing.T) {
	r := newRig(t, jtag.StraightLoopback())
	require.NoError(t, r.ctl.Drive(BusValues("UO_OUT", 8, 0x69)))
	snap, err := r.ctl.CaptureAll()
	require.NoError(t, err)
	require.Equal(t, uint64(0x69), snap.InputBus("UI_IN", 8))
	last := r.ctl.GetPinState("UO_OUT0").LastRead
	require.NotNil(t, last)
	require.Equal(t, snap.Outputs["UO_OUT0"], *last)
}

func TestIntestDrivesCore(t *testing.T) {
	r := newRig(t, jtag.StaticInputs(0xFF))
	for v := uint64(0); v < 16; v++ {
		snap, err := r.ctl.Intest(BusValues("UI_IN", 8, v<<1|1))
		require.NoError(t, err)
		require.Equal(t, device.INTEST, r.dev.Instruction())

		got, ok := device.DecodeSevenSegment(uint8(snap.OutputBus("UO_OUT", 8)))
		require.True(t, ok)
		require.Equal(t, uint8(v), got)

		_, out := r.adapter.Pads()
		require.True(t, out.Isolated())
	}
}

func TestClampHoldsDrivenOutputs(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.ctl.Drive(BusValues("UO_OUT", 8, 0x81)))
	require.NoError(t, r.ctl.Clamp())
	require.Equal(t, device.CLAMP, r.dev.Instruction())

	_, out := r.adapter.Pads()
	require.Equal(t, uint8(0x81), out.UO)

	_, err := r.ctl.CaptureAll()
	require.Error(t, err, "CLAMP selects BYPASS")
}

func TestBypassReleasesPins(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.ctl.DrivePin("UO_OUT0", true))
	require.NoError(t, r.ctl.Bypass())
	require.Equal(t, device.BYPASS, r.dev.Instruction())
	require.Equal(t, PinReleased, r.ctl.GetPinState("UO_OUT0").Mode)
	require.Nil(t, r.ctl.GetPinState("UO_OUT0").DrivenVal)

	require.NoError(t, r.ctl.Release())
	require.Equal(t, device.IDCODE, r.dev.Instruction())
}

func TestCaptureAllNeedsInstruction(t *testing.T) {
	r := newRig(t, nil)
	_, err := r.ctl.CaptureAll()
	require.Error(t, err)
}
