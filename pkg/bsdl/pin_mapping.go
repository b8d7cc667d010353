package bsdl

import "sort"

// PinMapping relates boundary cells to port names.
type PinMapping struct {
	CellToPort map[int]string
	// InputCell and OutputCell hold the observing and driving cell of each
	// port. A port without such a cell is absent.
	InputCell  map[string]int
	OutputCell map[string]int
}

// NewPinMapping indexes the non-internal cells.
func NewPinMapping(cells []BoundaryCell) *PinMapping {
	pm := &PinMapping{
		CellToPort: make(map[int]string),
		InputCell:  make(map[string]int),
		OutputCell: make(map[string]int),
	}
	for _, cell := range cells {
		if cell.Internal() {
			continue
		}
		pm.CellToPort[cell.Number] = cell.Port
		if cell.IsInput() {
			pm.InputCell[cell.Port] = cell.Number
		}
		if cell.IsOutput() {
			pm.OutputCell[cell.Port] = cell.Number
		}
	}
	return pm
}

// Port returns the port bonded to a cell, or "".
func (pm *PinMapping) Port(cell int) string {
	return pm.CellToPort[cell]
}

// Inputs returns the ports with an input cell, sorted.
func (pm *PinMapping) Inputs() []string { return sortedKeys(pm.InputCell) }

// Outputs returns the ports with an output cell, sorted.
func (pm *PinMapping) Outputs() []string { return sortedKeys(pm.OutputCell) }

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
