package shiftreg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShiftInIsFIFO(t *testing.T) {
	r := New(4, 0)
	r.Capture(0b1011)

	var out []bool
	for _, in := range []bool{false, true, true, false} {
		out = append(out, r.ShiftIn(in))
	}

	require.Equal(t, []bool{true, true, false, true}, out, "captured bits leave LSB first")
	require.Equal(t, uint64(0b0110), r.Value(), "shifted bits land in order")
	require.Equal(t, 4, r.Shifted())
}

func TestUpdateOnlyOnUpdate(t *testing.T) {
	r := New(8, 0x5A)
	require.Equal(t, uint64(0x5A), r.Updated())

	r.Capture(0)
	for i := 0; i < 8; i++ {
		r.ShiftIn(true)
		require.Equal(t, uint64(0x5A), r.Updated(), "update stage moved during shift %d", i)
	}
	r.Update()
	require.Equal(t, uint64(0xFF), r.Updated())
}

func TestCaptureMasksAndResetsCount(t *testing.T) {
	r := New(3, 0)
	r.ShiftIn(true)
	r.Capture(0xFF)
	require.Equal(t, uint64(0x7), r.Value())
	require.Equal(t, 0, r.Shifted())
	require.True(t, r.Out())
}

func TestSingleBitDelay(t *testing.T) {
	r := New(1, 0)
	r.Capture(0)
	pattern := []bool{true, false, true, true, false}
	prev := false
	for _, in := range pattern {
		require.Equal(t, prev, r.ShiftIn(in))
		prev = in
	}
}

func TestFullWidth(t *testing.T) {
	r := New(MaxWidth, 0)
	r.Capture(^uint64(0))
	require.True(t, r.ShiftIn(false))
	require.Equal(t, ^uint64(0)>>1, r.Value())
}

func TestResetRestoresInitial(t *testing.T) {
	r := New(4, 0b0001)
	r.Capture(0b1110)
	r.Update()
	r.Reset()
	require.Equal(t, uint64(1), r.Value())
	require.Equal(t, uint64(1), r.Updated())
}

func TestNewRejectsBadWidth(t *testing.T) {
	require.Panics(t, func() { New(0, 0) })
	require.Panics(t, func() { New(65, 0) })
}

func TestField(t *testing.T) {
	require.Equal(t, uint64(0xAB), Field(uint64(0xAB)<<18, 18, 8))
	require.Equal(t, uint64(0x3), Field(0b1101, 2, 2))
}
