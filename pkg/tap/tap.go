package tap

import (
	"fmt"
)

// State is one of the 16 IEEE 1149.1 TAP controller states.
type State uint8

const (
	StateTestLogicReset State = iota
	StateRunTestIdle
	StateSelectDRScan
	StateCaptureDR
	StateShiftDR
	StateExit1DR
	StatePauseDR
	StateExit2DR
	StateUpdateDR
	StateSelectIRScan
	StateCaptureIR
	StateShiftIR
	StateExit1IR
	StatePauseIR
	StateExit2IR
	StateUpdateIR

	numStates
)

// ResetClocks is the number of TMS=1 clocks that reach Test-Logic-Reset from
// any state.
const ResetClocks = 5

var stateNames = [numStates]string{
	StateTestLogicReset: "Test-Logic-Reset",
	StateRunTestIdle:    "Run-Test/Idle",
	StateSelectDRScan:   "Select-DR-Scan",
	StateCaptureDR:      "Capture-DR",
	StateShiftDR:        "Shift-DR",
	StateExit1DR:        "Exit1-DR",
	StatePauseDR:        "Pause-DR",
	StateExit2DR:        "Exit2-DR",
	StateUpdateDR:       "Update-DR",
	StateSelectIRScan:   "Select-IR-Scan",
	StateCaptureIR:      "Capture-IR",
	StateShiftIR:        "Shift-IR",
	StateExit1IR:        "Exit1-IR",
	StatePauseIR:        "Pause-IR",
	StateExit2IR:        "Exit2-IR",
	StateUpdateIR:       "Update-IR",
}

func (s State) String() string {
	if s.Valid() {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Valid reports whether s names one of the 16 controller states.
func (s State) Valid() bool {
	return s < numStates
}

// Register identifies which half of the state graph a state belongs to.
type Register uint8

const (
	RegisterNone Register = iota
	RegisterDR
	RegisterIR
)

func (r Register) String() string {
	switch r {
	case RegisterDR:
		return "DR"
	case RegisterIR:
		return "IR"
	default:
		return "none"
	}
}

// Register returns the register column the state drives. Test-Logic-Reset and
// Run-Test/Idle belong to neither.
func (s State) Register() Register {
	switch {
	case s >= StateSelectDRScan && s <= StateUpdateDR:
		return RegisterDR
	case s >= StateSelectIRScan && s <= StateUpdateIR:
		return RegisterIR
	default:
		return RegisterNone
	}
}

// Phase is the register action associated with a state.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseCapture
	PhaseShift
	PhaseUpdate
)

func (p Phase) String() string {
	switch p {
	case PhaseCapture:
		return "capture"
	case PhaseShift:
		return "shift"
	case PhaseUpdate:
		return "update"
	default:
		return "none"
	}
}

// Phase returns the action a register performs while the controller is in s.
func (s State) Phase() Phase {
	switch s {
	case StateCaptureDR, StateCaptureIR:
		return PhaseCapture
	case StateShiftDR, StateShiftIR:
		return PhaseShift
	case StateUpdateDR, StateUpdateIR:
		return PhaseUpdate
	default:
		return PhaseNone
	}
}

// Stable reports whether the state can be held indefinitely with a constant
// TMS value.
func (s State) Stable() bool {
	switch s {
	case StateTestLogicReset, StateRunTestIdle, StateShiftDR, StatePauseDR, StateShiftIR, StatePauseIR:
		return true
	}
	return false
}

// Sequence captures the TMS drive pattern and the sequence of states that result
// from applying that pattern to the TAP controller.
type Sequence struct {
	TMS    []bool
	States []State
}

// Final returns the state reached at the end of the sequence.
func (s Sequence) Final() State {
	return s.States[len(s.States)-1]
}

// transitions is indexed by state, then by TMS.
var transitions = [numStates][2]State{
	StateTestLogicReset: {StateRunTestIdle, StateTestLogicReset},
	StateRunTestIdle:    {StateRunTestIdle, StateSelectDRScan},
	StateSelectDRScan:   {StateCaptureDR, StateSelectIRScan},
	StateCaptureDR:      {StateShiftDR, StateExit1DR},
	StateShiftDR:        {StateShiftDR, StateExit1DR},
	StateExit1DR:        {StatePauseDR, StateUpdateDR},
	StatePauseDR:        {StatePauseDR, StateExit2DR},
	StateExit2DR:        {StateShiftDR, StateUpdateDR},
	StateUpdateDR:       {StateRunTestIdle, StateSelectDRScan},
	StateSelectIRScan:   {StateCaptureIR, StateTestLogicReset},
	StateCaptureIR:      {StateShiftIR, StateExit1IR},
	StateShiftIR:        {StateShiftIR, StateExit1IR},
	StateExit1IR:        {StatePauseIR, StateUpdateIR},
	StatePauseIR:        {StatePauseIR, StateExit2IR},
	StateExit2IR:        {StateShiftIR, StateUpdateIR},
	StateUpdateIR:       {StateRunTestIdle, StateSelectDRScan},
}

// NextState returns the state after one TCK rising edge with the given TMS
// value. It panics if current is not a valid state; the graph has no entry for
// it and continuing would only hide the corruption.
func NextState(current State, tms bool) State {
	if !current.Valid() {
		panic(fmt.Sprintf("tap: unhandled state %d", current))
	}
	if tms {
		return transitions[current][1]
	}
	return transitions[current][0]
}

// StateMachine tracks the TAP controller state on the host side. It does not
// perform any I/O; it produces the TMS patterns an adapter has to clock.
type StateMachine struct {
	state State
}

// NewStateMachine creates a state machine in Test-Logic-Reset.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateTestLogicReset}
}

// State reports the tracked state.
func (m *StateMachine) State() State {
	return m.state
}

// Clock advances one TCK cycle with the provided TMS bit.
func (m *StateMachine) Clock(tms bool) State {
	m.state = NextState(m.state, tms)
	return m.state
}

// ClockAll applies a TMS pattern and returns the resulting sequence.
func (m *StateMachine) ClockAll(tms []bool) Sequence {
	seq := Sequence{
		TMS:    append([]bool(nil), tms...),
		States: make([]State, 0, len(tms)+1),
	}
	seq.States = append(seq.States, m.state)
	for _, bit := range tms {
		seq.States = append(seq.States, m.Clock(bit))
	}
	return seq
}

// Reset clocks ResetClocks consecutive TMS=1 cycles. The returned sequence can
// be forwarded to an adapter.
func (m *StateMachine) Reset() Sequence {
	tms := make([]bool, ResetClocks)
	for i := range tms {
		tms[i] = true
	}
	return m.ClockAll(tms)
}

// Force overrides the tracked state, for example after a hardware reset line
// was pulsed.
func (m *StateMachine) Force(s State) {
	if !s.Valid() {
		panic(fmt.Sprintf("tap: unhandled state %d", s))
	}
	m.state = s
}

// GoTo moves to target along the shortest path and returns the TMS pattern
// that was applied.
func (m *StateMachine) GoTo(target State) (Sequence, error) {
	path, err := Path(m.state, target)
	if err != nil {
		return Sequence{}, err
	}
	m.state = path.Final()
	return path, nil
}

// Path finds the shortest TMS pattern from one state to another with a
// breadth-first search over the graph.
func Path(from, to State) (Sequence, error) {
	if !from.Valid() {
		return Sequence{}, fmt.Errorf("tap: invalid start state %d", from)
	}
	if !to.Valid() {
		return Sequence{}, fmt.Errorf("tap: invalid target state %d", to)
	}
	if from == to {
		return Sequence{States: []State{from}}, nil
	}

	var prev [numStates]State
	var via [numStates]bool
	var seen [numStates]bool
	seen[from] = true

	queue := []State{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, bit := range [2]bool{false, true} {
			next := NextState(cur, bit)
			if seen[next] {
				continue
			}
			seen[next] = true
			prev[next] = cur
			via[next] = bit
			if next == to {
				return unwind(from, to, prev, via), nil
			}
			queue = append(queue, next)
		}
	}
	return Sequence{}, fmt.Errorf("tap: no path from %s to %s", from, to)
}

func unwind(from, to State, prev [numStates]State, via [numStates]bool) Sequence {
	var tms []bool
	states := []State{to}
	for s := to; s != from; s = prev[s] {
		tms = append(tms, via[s])
		states = append(states, prev[s])
	}
	for i, j := 0, len(tms)-1; i < j; i, j = i+1, j-1 {
		tms[i], tms[j] = tms[j], tms[i]
	}
	for i, j := 0, len(states)-1; i < j; i, j = i+1, j-1 {
		states[i], states[j] = states[j], states[i]
	}
	return Sequence{TMS: tms, States: states}
}
