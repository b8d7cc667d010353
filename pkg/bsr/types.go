package bsr

import (
	"fmt"
	"sort"
)

// PinMode represents the current drive state of an output pin.
type PinMode int

const (
	// PinReleased means the core, not the boundary register, drives the pin.
	PinReleased PinMode = iota
	// PinDriven means the pin follows its boundary output cell.
	PinDriven
)

func (m PinMode) String() string {
	if m == PinDriven {
		return "driven"
	}
	return "released"
}

// PinState tracks runtime state for a single port.
type PinState struct {
	Port      string
	Mode      PinMode
	DrivenVal *bool // non-nil when Mode == PinDriven
	LastRead  *bool // output cell at the last capture
}

// Snapshot is one decoded boundary capture.
type Snapshot struct {
	Raw     []bool
	Inputs  map[string]bool // port -> input cell
	Outputs map[string]bool // port -> output cell
}

// Bus folds ports prefix0..prefix(width-1) of m into an integer, bit i from
// port prefix<i>.
func Bus(m map[string]bool, prefix string, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		if m[fmt.Sprintf("%s%d", prefix, i)] {
			v |= 1 << uint(i)
		}
	}
	return v
}

// BusValues expands v into per-port values for ports prefix0..prefix(width-1).
func BusValues(prefix string, width int, v uint64) map[string]bool {
	m := make(map[string]bool, width)
	for i := 0; i < width; i++ {
		m[fmt.Sprintf("%s%d", prefix, i)] = v>>uint(i)&1 != 0
	}
	return m
}

// InputBus returns the input cells of a bus.
func (s Snapshot) InputBus(prefix string, width int) uint64 {
	return Bus(s.Inputs, prefix, width)
}

// OutputBus returns the output cells of a bus.
func (s Snapshot) OutputBus(prefix string, width int) uint64 {
	return Bus(s.Outputs, prefix, width)
}

// Value returns the first 64 cells as an integer, cell 0 in bit 0.
func (s Snapshot) Value() uint64 {
	var v uint64
	for i, bit := range s.Raw {
		if bit && i < 64 {
			v |= 1 << uint(i)
		}
	}
	return v
}

func sortedPorts(m map[string]bool) []string {
	ports := make([]string, 0, len(m))
	for p := range m {
		ports = append(ports, p)
	}
	sort.Strings(ports)
	return ports
}
