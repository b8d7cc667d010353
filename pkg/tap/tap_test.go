package tap

import "testing"

func TestNextStateTable(t *testing.T) {
	cases := []struct {
		start State
		tms   bool
		end   State
	}{
		{StateTestLogicReset, false, StateRunTestIdle},
		{StateTestLogicReset, true, StateTestLogicReset},
		{StateRunTestIdle, true, StateSelectDRScan},
		{StateSelectDRScan, false, StateCaptureDR},
		{StateShiftDR, true, StateExit1DR},
		{StateExit1DR, false, StatePauseDR},
		{StateExit2DR, false, StateShiftDR},
		{StateUpdateDR, true, StateSelectDRScan},
		{StateSelectIRScan, true, StateTestLogicReset},
		{StateCaptureIR, false, StateShiftIR},
		{StatePauseIR, true, StateExit2IR},
		{StateExit2IR, true, StateUpdateIR},
		{StateUpdateIR, false, StateRunTestIdle},
	}

	for _, tc := range cases {
		got := NextState(tc.start, tc.tms)
		if got != tc.end {
			t.Fatalf("NextState(%s, %v) = %s, want %s", tc.start, tc.tms, got, tc.end)
		}
	}
}

func TestNextStatePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NextState(State(16)) did not panic")
		}
	}()
	NextState(State(16), false)
}

func TestFiveOnesResetFromEveryState(t *testing.T) {
	for s := StateTestLogicReset; s < numStates; s++ {
		m := &StateMachine{state: s}
		m.Reset()
		if m.State() != StateTestLogicReset {
			t.Fatalf("Reset from %s ended in %s", s, m.State())
		}
	}
}

func TestPauseStatesHold(t *testing.T) {
	for _, s := range []State{StatePauseDR, StatePauseIR, StateShiftDR, StateShiftIR, StateRunTestIdle} {
		if !s.Stable() {
			t.Fatalf("%s not reported stable", s)
		}
		held := s
		for i := 0; i < 10; i++ {
			held = NextState(held, false)
		}
		if held != s {
			t.Fatalf("%s drifted to %s with TMS=0", s, held)
		}
	}
}

func TestRegisterAndPhase(t *testing.T) {
	cases := []struct {
		state State
		reg   Register
		phase Phase
	}{
		{StateTestLogicReset, RegisterNone, PhaseNone},
		{StateRunTestIdle, RegisterNone, PhaseNone},
		{StateCaptureDR, RegisterDR, PhaseCapture},
		{StateShiftDR, RegisterDR, PhaseShift},
		{StateExit2DR, RegisterDR, PhaseNone},
		{StateUpdateDR, RegisterDR, PhaseUpdate},
		{StateSelectIRScan, RegisterIR, PhaseNone},
		{StateCaptureIR, RegisterIR, PhaseCapture},
		{StateShiftIR, RegisterIR, PhaseShift},
		{StateUpdateIR, RegisterIR, PhaseUpdate},
	}
	for _, tc := range cases {
		if got := tc.state.Register(); got != tc.reg {
			t.Fatalf("%s.Register() = %s, want %s", tc.state, got, tc.reg)
		}
		if got := tc.state.Phase(); got != tc.phase {
			t.Fatalf("%s.Phase() = %s, want %s", tc.state, got, tc.phase)
		}
	}
}

func TestStateMachineReset(t *testing.T) {
	m := NewStateMachine()
	m.Clock(false)
	if m.State() != StateRunTestIdle {
		t.Fatalf("State() = %s, want %s", m.State(), StateRunTestIdle)
	}

	seq := m.Reset()

	if len(seq.TMS) != ResetClocks {
		t.Fatalf("Reset sequence length = %d, want %d", len(seq.TMS), ResetClocks)
	}
	if want := StateTestLogicReset; m.State() != want {
		t.Fatalf("State after reset = %s, want %s", m.State(), want)
	}
	if seq.Final() != StateTestLogicReset {
		t.Fatalf("Final sequence state = %s, want %s", seq.Final(), StateTestLogicReset)
	}
}

func TestGoToProducesExpectedPattern(t *testing.T) {
	m := NewStateMachine()
	m.Clock(false)

	path, err := m.GoTo(StateShiftIR)
	if err != nil {
		t.Fatalf("GoTo returned error: %v", err)
	}

	wantBits := []bool{true, true, false, false}
	if len(path.TMS) != len(wantBits) {
		t.Fatalf("GoTo length = %d, want %d", len(path.TMS), len(wantBits))
	}
	for i, want := range wantBits {
		if path.TMS[i] != want {
			t.Fatalf("path bit %d = %v, want %v", i, path.TMS[i], want)
		}
	}
	if m.State() != StateShiftIR {
		t.Fatalf("State() = %s, want %s", m.State(), StateShiftIR)
	}

	if _, err := m.GoTo(StateRunTestIdle); err != nil {
		t.Fatalf("GoTo RunTestIdle returned error: %v", err)
	}
	if m.State() != StateRunTestIdle {
		t.Fatalf("State() = %s, want %s", m.State(), StateRunTestIdle)
	}
}

func TestPathReachesEveryState(t *testing.T) {
	for from := StateTestLogicReset; from < numStates; from++ {
		for to := StateTestLogicReset; to < numStates; to++ {
			seq, err := Path(from, to)
			if err != nil {
				t.Fatalf("Path(%s, %s): %v", from, to, err)
			}
			replay := &StateMachine{state: from}
			got := replay.ClockAll(seq.TMS)
			if got.Final() != to {
				t.Fatalf("Path(%s, %s) replays to %s", from, to, got.Final())
			}
			for i := range got.States {
				if got.States[i] != seq.States[i] {
					t.Fatalf("Path(%s, %s) state %d = %s, replay %s", from, to, i, seq.States[i], got.States[i])
				}
			}
		}
	}
}

func TestPathRejectsInvalidStates(t *testing.T) {
	if _, err := Path(State(20), StateRunTestIdle); err == nil {
		t.Fatalf("Path from invalid state returned nil error")
	}
	if _, err := Path(StateRunTestIdle, State(20)); err == nil {
		t.Fatalf("Path to invalid state returned nil error")
	}
}
