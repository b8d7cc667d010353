package interconnect

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/ttjtag/pkg/bsr"
	"github.com/OpenTraceLab/ttjtag/pkg/device"
	"github.com/OpenTraceLab/ttjtag/pkg/jtag"
	"github.com/OpenTraceLab/ttjtag/pkg/session"
)

func newController(t *testing.T, fixture jtag.Fixture) (*bsr.Controller, *jtag.DeviceAdapter) {
	t.Helper()
	adapter := jtag.NewDeviceAdapter(device.New(device.DefaultConfig()), fixture)
	repo, err := session.DefaultRepository()
	require.NoError(t, err)
	sess := session.New(adapter, repo)
	target, err := sess.Identify()
	require.NoError(t, err)
	ctl, err := bsr.NewController(sess, target)
	require.NoError(t, err)
	return ctl, adapter
}

func TestDiscoverStraightLoopback(t *testing.T) {
	ctl, adapter := newController(t, jtag.StraightLoopback())
	nl, err := DiscoverNetlist(context.Background(), ctl, nil, nil)
	require.NoError(t, err)
	require.Equal(t, device.BusWidth, nl.NetCount())
	for i := 0; i < device.BusWidth; i++ {
		require.True(t, nl.Connected(fmt.Sprintf("UO_OUT%d", i), fmt.Sprintf("UI_IN%d", i)))
	}

	_, out := adapter.Pads()
	require.Zero(t, out.UO, "outputs are parked low")
}

func TestDiscoverPermutedWiring(t *testing.T) {
	// ui_in[0] and ui_in[1] both hang off uo_out[2]; ui_in[7] floats low.
	wiring := &jtag.Loopback{Map: [device.BusWidth]int{2, 2, 5, 6, 0, 1, 3, -1}}
	ctl, _ := newController(t, wiring)

	cfg := DefaultConfig()
	cfg.RequireSymmetricToggle = true
	nl, err := DiscoverNetlist(context.Background(), ctl, cfg, nil)
	require.NoError(t, err)

	require.True(t, nl.Connected("UO_OUT2", "UI_IN0"))
	require.True(t, nl.Connected("UO_OUT2", "UI_IN1"))
	require.True(t, nl.Connected("UO_OUT5", "UI_IN2"))
	require.True(t, nl.Connected("UO_OUT3", "UI_IN6"))
	require.False(t, nl.Connected("UO_OUT7", "UI_IN7"))
	require.False(t, nl.Connected("UO_OUT4", "UI_IN4"))

	// uo_out[4] and uo_out[7] reach no input.
	require.Equal(t, 6, nl.NetCount())
}

func TestDiscoverNoWiring(t *testing.T) {
	ctl, _ := newController(t, jtag.StaticInputs(0))
	nl, err := DiscoverNetlist(context.Background(), ctl, nil, nil)
	require.NoError(t, err)
	require.Zero(t, nl.NetCount())
}

func TestDiscoverProgressAndFilter(t *testing.T) {
	ctl, _ := newController(t, jtag.StraightLoopback())
	cfg := DefaultConfig()
	cfg.OnlyPinPattern = "^UO_OUT[01]$"

	progress := make(chan Progress, 16)
	nl, err := DiscoverNetlist(context.Background(), ctl, cfg, progress)
	require.NoError(t, err)
	close(progress)

	var phases []string
	for p := range progress {
		phases = append(phases, p.Phase)
	}
	require.Equal(t, []string{"init", "scanning", "scanning", "finalizing"}, phases)
	require.Equal(t, 2, nl.NetCount())
}

func TestDiscoverCancelled(t *testing.T) {
	ctl, _ := newController(t, jtag.StraightLoopback())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DiscoverNetlist(ctx, ctl, nil, nil)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
