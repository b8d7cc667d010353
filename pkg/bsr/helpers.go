package bsr

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/ttjtag/pkg/bsdl"
)

// safeVector builds a boundary vector holding each cell's safe value. X and
// anything else read as 0.
func safeVector(cells []bsdl.BoundaryCell, length int) ([]bool, error) {
	bits := make([]bool, length)
	for _, cell := range cells {
		if cell.Number >= length {
			return nil, fmt.Errorf("bsr: cell %d exceeds boundary length %d", cell.Number, length)
		}
		bits[cell.Number] = strings.TrimSpace(cell.Safe) == "1"
	}
	return bits, nil
}

// setCells writes values into the cells mapping selects (input or output).
func setCells(bits []bool, cells map[string]int, values map[string]bool) error {
	for port, v := range values {
		n, ok := cells[strings.ToUpper(port)]
		if !ok {
			return fmt.Errorf("bsr: no cell for port %s", port)
		}
		if n >= len(bits) {
			return fmt.Errorf("bsr: cell %d exceeds boundary length %d", n, len(bits))
		}
		bits[n] = v
	}
	return nil
}

// decode splits a capture into per-port input and output values.
func decode(desc *bsdl.Description, raw []bool) Snapshot {
	snap := Snapshot{
		Raw:     raw,
		Inputs:  make(map[string]bool, len(desc.Pins.InputCell)),
		Outputs: make(map[string]bool, len(desc.Pins.OutputCell)),
	}
	for port, n := range desc.Pins.InputCell {
		if n < len(raw) {
			snap.Inputs[port] = raw[n]
		}
	}
	for port, n := range desc.Pins.OutputCell {
		if n < len(raw) {
			snap.Outputs[port] = raw[n]
		}
	}
	return snap
}
