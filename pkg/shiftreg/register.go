// Package shiftreg implements the capture/shift/update register cell used by
// every JTAG register in the device: the instruction register, IDCODE, BYPASS
// and the boundary-scan register.
//
// Bits move LSB first. The bit falling out of position 0 is the serial output
// and the serial input enters at position width-1, so a register of width N
// behaves as a FIFO of length N.
package shiftreg

import "fmt"

// MaxWidth is the widest register that fits the uint64 backing store.
const MaxWidth = 64

// Register holds the three values of a scan register. The update value only
// changes on Update or Reset; shifting never disturbs it.
type Register struct {
	width   int
	mask    uint64
	initial uint64

	shift   uint64
	update  uint64
	shifted int
}

// New returns a register of the given width whose shift and update values
// start at reset.
func New(width int, reset uint64) *Register {
	if width < 1 || width > MaxWidth {
		panic(fmt.Sprintf("shiftreg: width %d out of range", width))
	}
	mask := ^uint64(0)
	if width < MaxWidth {
		mask = 1<<uint(width) - 1
	}
	r := &Register{width: width, mask: mask, initial: reset & mask}
	r.Reset()
	return r
}

// Width returns the number of cells in the register.
func (r *Register) Width() int { return r.width }

// Capture loads v into the shift stage and restarts the shifted-bit count.
func (r *Register) Capture(v uint64) {
	r.shift = v & r.mask
	r.shifted = 0
}

// ShiftIn moves the shift stage one position towards the LSB, inserting in at
// the MSB, and returns the bit that left position 0.
func (r *Register) ShiftIn(in bool) (out bool) {
	out = r.shift&1 != 0
	r.shift >>= 1
	if in {
		r.shift |= 1 << uint(r.width-1)
	}
	r.shifted++
	return out
}

// Update copies the shift stage to the update stage.
func (r *Register) Update() {
	r.update = r.shift
}

// Reset returns both stages to the power-on value.
func (r *Register) Reset() {
	r.shift = r.initial
	r.update = r.initial
	r.shifted = 0
}

// Value returns the shift stage.
func (r *Register) Value() uint64 { return r.shift }

// Updated returns the update stage.
func (r *Register) Updated() uint64 { return r.update }

// Out is the bit currently presented on the serial output.
func (r *Register) Out() bool { return r.shift&1 != 0 }

// Shifted reports how many bits were shifted since the last capture or reset.
func (r *Register) Shifted() int { return r.shifted }

// Field extracts n bits of v starting at bit off.
func Field(v uint64, off, n int) uint64 {
	return (v >> uint(off)) & (1<<uint(n) - 1)
}
