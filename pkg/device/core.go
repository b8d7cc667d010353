package device

// Manual override lives on ui_in: bit 0 enables it and bits 1..4 carry the
// value to display.
const (
	overrideEnable = 1 << 0
	overrideShift  = 1
)

// Core is the 4-bit counter and 7-segment decoder behind the boundary.
// The counter advances on every clock edge unless the manual override is
// enabled, in which case the displayed value follows ui_in combinationally
// and the count holds.
type Core struct {
	count uint8
}

// Count returns the counter value.
func (c *Core) Count() uint8 { return c.count }

// Display returns the digit shown for the given ui_in value.
func (c *Core) Display(ui uint8) uint8 {
	if ui&overrideEnable != 0 {
		return (ui >> overrideShift) & 0xF
	}
	return c.count
}

// Output is the value the core drives onto uo_out.
func (c *Core) Output(ui uint8) uint8 {
	return SevenSegment(c.Display(ui))
}

// next returns the counter value after one edge with ui as the input bus.
func (c *Core) next(ui uint8) uint8 {
	if ui&overrideEnable != 0 {
		return c.count
	}
	return (c.count + 1) & 0xF
}

func (c *Core) reset() { c.count = 0 }
