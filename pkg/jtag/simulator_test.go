package jtag

import (
	"bytes"
	"testing"
)

func TestSimAdapterRecordsShifts(t *testing.T) {
	sim := NewSimAdapter(AdapterInfo{Name: "sim"})

	tdo, err := sim.ShiftIR([]byte{0x08}, []byte{0x0F}, 4)
	if err != nil {
		t.Fatalf("ShiftIR: %v", err)
	}
	if !bytes.Equal(tdo, []byte{0x0F}) {
		t.Fatalf("default TDO should echo TDI, got %#v", tdo)
	}
	if _, err := sim.ShiftDR([]byte{0x00, 0x80}, nil, 16); err != nil {
		t.Fatalf("ShiftDR: %v", err)
	}

	hist := sim.History()
	if len(hist) != 2 {
		t.Fatalf("history has %d entries", len(hist))
	}
	if hist[0].Region != ShiftRegionIR || hist[1].Region != ShiftRegionDR {
		t.Fatalf("regions = %s, %s", hist[0].Region, hist[1].Region)
	}
	if sim.LastShift().Bits != 16 {
		t.Fatalf("last shift bits = %d", sim.LastShift().Bits)
	}
	tms := sim.ClockedTMS()
	if len(tms) != 20 || !tms[3] || !tms[19] || tms[18] {
		t.Fatalf("clocked TMS = %v", tms)
	}
}

func TestSimAdapterHook(t *testing.T) {
	sim := NewSimAdapter(AdapterInfo{})
	sim.OnShift = func(region ShiftRegion, tms, tdi []byte, bits int) ([]byte, error) {
		return []byte{0xA5}, nil
	}
	tdo, err := sim.ShiftDR(nil, nil, 8)
	if err != nil || tdo[0] != 0xA5 {
		t.Fatalf("hook TDO = %#v, %v", tdo, err)
	}
}

func TestSimAdapterRejectsBadInput(t *testing.T) {
	sim := NewSimAdapter(AdapterInfo{})
	if _, err := sim.ShiftDR(nil, nil, 0); err == nil {
		t.Fatalf("zero-bit shift accepted")
	}
	if _, err := sim.ShiftDR([]byte{0}, nil, 9); err == nil {
		t.Fatalf("short TMS buffer accepted")
	}
	if err := sim.SetSpeed(-1); err == nil {
		t.Fatalf("negative speed accepted")
	}
	if len(sim.History()) != 0 {
		t.Fatalf("rejected shifts were recorded")
	}
}

func TestSimAdapterResetCounts(t *testing.T) {
	sim := NewSimAdapter(AdapterInfo{})
	_ = sim.ResetTAP(false)
	_ = sim.ResetTAP(true)
	total, hard := sim.ResetCounts()
	if total != 2 || hard != 1 {
		t.Fatalf("resets = %d/%d", total, hard)
	}
}
