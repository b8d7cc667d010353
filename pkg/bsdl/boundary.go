package bsdl

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// BoundaryCell is one entry of BOUNDARY_REGISTER:
//
//	num (cell, port, function, safe [, ccell, disval, rslt])
type BoundaryCell struct {
	Number   int
	CellType string // BC_1, BC_4, ...
	Port     string // "*" for internal cells
	Function string // input, output2, output3, control, internal, ...
	Safe     string
	Control  int // -1 when absent
	Disable  int // -1 when absent
	Result   string
}

// Internal reports whether the cell is bonded to no port.
func (c BoundaryCell) Internal() bool {
	return c.Port == "*" || c.Port == ""
}

// IsInput reports whether the cell observes a pin.
func (c BoundaryCell) IsInput() bool {
	f := strings.ToLower(c.Function)
	return f == "input" || f == "clock" || f == "observe_only" || f == "bidir"
}

// IsOutput reports whether the cell drives a pin.
func (c BoundaryCell) IsOutput() bool {
	f := strings.ToLower(c.Function)
	return strings.HasPrefix(f, "output") || f == "bidir"
}

var boundaryEntry = regexp.MustCompile(`(\d+)\s*\(([^)]+)\)`)

// BoundaryCells parses BOUNDARY_REGISTER. Cells are sorted by number, cell 0
// being nearest TDO.
func (e *Entity) BoundaryCells() ([]BoundaryCell, error) {
	spec := e.Spec("BOUNDARY_REGISTER")
	if spec == nil {
		return nil, fmt.Errorf("bsdl: BOUNDARY_REGISTER attribute missing")
	}
	matches := boundaryEntry.FindAllStringSubmatch(spec.Is.Text(), -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("bsdl: BOUNDARY_REGISTER has no cells")
	}

	cells := make([]BoundaryCell, 0, len(matches))
	for _, m := range matches {
		num, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("bsdl: invalid boundary cell number %q", m[1])
		}
		fields := splitAndTrim(m[2])
		if len(fields) < 3 {
			return nil, fmt.Errorf("bsdl: boundary cell %d has %d fields", num, len(fields))
		}
		cell := BoundaryCell{
			Number:   num,
			CellType: fields[0],
			Port:     fields[1],
			Function: fields[2],
			Control:  -1,
			Disable:  -1,
		}
		if len(fields) > 3 {
			cell.Safe = fields[3]
		}
		if len(fields) > 4 {
			cell.Control = optionalInt(fields[4])
		}
		if len(fields) > 5 {
			cell.Disable = optionalInt(fields[5])
		}
		if len(fields) > 6 {
			cell.Result = fields[6]
		}
		cells = append(cells, cell)
	}

	sort.Slice(cells, func(i, j int) bool { return cells[i].Number < cells[j].Number })
	return cells, nil
}

func splitAndTrim(body string) []string {
	parts := strings.Split(body, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func optionalInt(val string) int {
	v, err := strconv.Atoi(val)
	if err != nil {
		return -1
	}
	return v
}
