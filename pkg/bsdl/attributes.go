package bsdl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Instruction is one entry of INSTRUCTION_OPCODE.
type Instruction struct {
	Name   string
	Opcode string // binary, MSB first
}

// Value returns the opcode as an integer.
func (i Instruction) Value() (uint64, error) {
	v, err := strconv.ParseUint(i.Opcode, 2, 64)
	if err != nil {
		return 0, fmt.Errorf("bsdl: instruction %s opcode %q: %w", i.Name, i.Opcode, err)
	}
	return v, nil
}

// TAPConfig names the TAP signals and the maximum TCK rate.
type TAPConfig struct {
	ScanIn    string
	ScanOut   string
	ScanMode  string
	ScanReset string
	ScanClock string
	MaxFreq   float64
	Edge      string
}

// DeviceInfo carries the identification attributes.
type DeviceInfo struct {
	IDCode             string // 32 characters, may contain X
	UserCode           string
	InstructionLength  int
	InstructionCapture string
	BoundaryLength     int
}

var instructionEntry = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*(?:\[\d+\])?\s*\(([^)]*)\)`)

// parseInstructions reads "NAME (OPCODE), ..." lists. An instruction with
// several opcodes yields one entry per opcode.
func parseInstructions(s string) []Instruction {
	var out []Instruction
	for _, m := range instructionEntry.FindAllStringSubmatch(s, -1) {
		for _, op := range splitAndTrim(m[2]) {
			out = append(out, Instruction{Name: m[1], Opcode: op})
		}
	}
	return out
}

// ParseBinaryString converts a bit pattern with optional X wildcards. mask has
// a one for every specified bit.
func ParseBinaryString(s string) (value uint32, mask uint32, hasWildcards bool) {
	for _, ch := range s {
		switch ch {
		case '0', '1':
			value = value<<1 | uint32(ch-'0')
			mask = mask<<1 | 1
		case 'X', 'x':
			value <<= 1
			mask <<= 1
			hasWildcards = true
		}
	}
	return value, mask, hasWildcards
}

// DeviceInfo extracts identification attributes.
func (e *Entity) DeviceInfo() *DeviceInfo {
	info := &DeviceInfo{}
	for _, attr := range e.Attributes() {
		if attr.Spec == nil {
			continue
		}
		switch strings.ToUpper(attr.Spec.Name) {
		case "INSTRUCTION_LENGTH":
			info.InstructionLength, _ = attr.Spec.Is.Int()
		case "INSTRUCTION_CAPTURE":
			info.InstructionCapture = attr.Spec.Is.Text()
		case "BOUNDARY_LENGTH":
			info.BoundaryLength, _ = attr.Spec.Is.Int()
		case "IDCODE_REGISTER":
			info.IDCode = attr.Spec.Is.Text()
		case "USERCODE_REGISTER":
			info.UserCode = attr.Spec.Is.Text()
		}
	}
	return info
}

// Instructions returns the INSTRUCTION_OPCODE table.
func (e *Entity) Instructions() []Instruction {
	if spec := e.Spec("INSTRUCTION_OPCODE"); spec != nil {
		return parseInstructions(spec.Is.Text())
	}
	return nil
}

// TAPConfig extracts the TAP_SCAN_* attributes.
func (e *Entity) TAPConfig() *TAPConfig {
	cfg := &TAPConfig{}
	for _, attr := range e.Attributes() {
		if attr.Spec == nil {
			continue
		}
		switch strings.ToUpper(attr.Spec.Name) {
		case "TAP_SCAN_IN":
			cfg.ScanIn = attr.Spec.Of
		case "TAP_SCAN_OUT":
			cfg.ScanOut = attr.Spec.Of
		case "TAP_SCAN_MODE":
			cfg.ScanMode = attr.Spec.Of
		case "TAP_SCAN_RESET":
			cfg.ScanReset = attr.Spec.Of
		case "TAP_SCAN_CLOCK":
			cfg.ScanClock = attr.Spec.Of
			cfg.MaxFreq, cfg.Edge = scanClock(attr.Spec.Is)
		}
	}
	return cfg
}

// scanClock reads the (frequency, edge) tuple of TAP_SCAN_CLOCK.
func scanClock(expr *Expression) (float64, string) {
	if expr == nil || len(expr.Terms) == 0 || expr.Terms[0].Tuple == nil {
		return 0, ""
	}
	vals := expr.Terms[0].Tuple.Values
	var freq float64
	var edge string
	if len(vals) > 0 && len(vals[0].Terms) > 0 {
		switch t := vals[0].Terms[0]; {
		case t.Real != nil:
			freq = *t.Real
		case t.Integer != nil:
			freq = float64(*t.Integer)
		}
	}
	if len(vals) > 1 && len(vals[1].Terms) > 0 && vals[1].Terms[0].Ident != nil {
		edge = *vals[1].Terms[0].Ident
	}
	return freq, edge
}

// PinMap returns signal to package pin assignments from every
// PIN_MAP_STRING constant.
func (e *Entity) PinMap() map[string]string {
	pins := make(map[string]string)
	for _, attr := range e.Attributes() {
		if attr.Constant == nil || !strings.EqualFold(attr.Constant.Type, "PIN_MAP_STRING") {
			continue
		}
		for _, entry := range splitAndTrim(attr.Constant.Value.Text()) {
			parts := strings.SplitN(entry, ":", 2)
			if len(parts) == 2 {
				pins[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			}
		}
	}
	return pins
}

// RegisterAccess maps each instruction to the data register it selects, from
// the REGISTER_ACCESS attribute. Register names are upper case, for example
// BOUNDARY, BYPASS or DEVICE_ID.
func (e *Entity) RegisterAccess() map[string]string {
	spec := e.Spec("REGISTER_ACCESS")
	if spec == nil {
		return nil
	}
	access := make(map[string]string)
	for _, m := range instructionEntry.FindAllStringSubmatch(spec.Is.Text(), -1) {
		reg := strings.ToUpper(m[1])
		for _, instr := range splitAndTrim(m[2]) {
			access[strings.ToUpper(instr)] = reg
		}
	}
	return access
}
