package device

// Bidirectional pad assignments for the TAP. TCK is the device clock.
const (
	UIOTMS = 0
	UIOTDI = 1
	UIOTDO = 2
)

// Inputs is the value of every input pad for one clock edge.
type Inputs struct {
	UI    uint8 // ui_in
	UIO   uint8 // uio_in, TMS and TDI live here
	Reset bool  // reset line asserted (rst_n low)
}

// TMS returns the mode-select bit.
func (in Inputs) TMS() bool { return in.UIO&(1<<UIOTMS) != 0 }

// TDI returns the serial data input bit.
func (in Inputs) TDI() bool { return in.UIO&(1<<UIOTDI) != 0 }

// WithTAP returns a copy of in with TMS and TDI set.
func (in Inputs) WithTAP(tms, tdi bool) Inputs {
	in.UIO &^= 1<<UIOTMS | 1<<UIOTDI
	if tms {
		in.UIO |= 1 << UIOTMS
	}
	if tdi {
		in.UIO |= 1 << UIOTDI
	}
	return in
}

// Outputs is the value of every output pad. UIO and UIOOE describe the
// bidirectional pads driven by the core; TDO has its own pad driver outside
// the boundary.
type Outputs struct {
	UO    uint8 // uo_out
	UIO   uint8 // uio_out
	UIOOE uint8 // uio_oe
	TDO   bool
}

// Isolated reports whether every core-driven output is low.
func (o Outputs) Isolated() bool {
	return o.UO == 0 && o.UIO == 0 && o.UIOOE == 0
}
