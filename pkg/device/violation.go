package device

import (
	"fmt"

	"github.com/OpenTraceLab/ttjtag/pkg/tap"
)

// ViolationKind classifies a hardware assertion failure.
type ViolationKind uint8

const (
	// ViolationProtocol is an Update pulse after a scan that shifted a
	// number of bits different from the register width.
	ViolationProtocol ViolationKind = iota + 1
	// ViolationTransition is a TAP state that the mode-select history
	// cannot produce.
	ViolationTransition
	// ViolationIsolation is INTEST active with a core-driven output high.
	ViolationIsolation
	// ViolationDecode is an instruction capture whose low bits are not 01.
	ViolationDecode
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationProtocol:
		return "protocol"
	case ViolationTransition:
		return "state-transition"
	case ViolationIsolation:
		return "isolation"
	case ViolationDecode:
		return "decode"
	default:
		return fmt.Sprintf("ViolationKind(%d)", uint8(k))
	}
}

// Violation is the panic value raised by a strict device when an assertion
// fails. Simulation stops at the edge that broke the rule.
type Violation struct {
	Kind   ViolationKind
	State  tap.State
	Detail string
}

func (v Violation) Error() string {
	return fmt.Sprintf("device: %s violation in %s: %s", v.Kind, v.State, v.Detail)
}

func raise(kind ViolationKind, state tap.State, format string, args ...interface{}) {
	v := Violation{Kind: kind, State: state, Detail: fmt.Sprintf(format, args...)}
	log.Errorf("%v", v)
	panic(v)
}
