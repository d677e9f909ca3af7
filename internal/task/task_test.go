package task

import (
	"errors"
	"fmt"
	"testing"
)

func TestRunContext_History(t *testing.T) {
	rc := NewRunContext("t1", nil, nil)
	if rc.State() != StatePending {
		t.Fatalf("initial state=%s, want pending", rc.State())
	}
	rc.Transition(StateFetching)
	rc.Transition(StateSucceeded)

	h := rc.History()
	want := []State{StatePending, StateFetching, StateSucceeded}
	if len(h) != len(want) {
		t.Fatalf("history=%v, want %v", h, want)
	}
	for i := range want {
		if h[i] != want[i] {
			t.Fatalf("history[%d]=%s, want %s", i, h[i], want[i])
		}
	}
}

func TestRunContext_TerminalIsFinal(t *testing.T) {
	rc := NewRunContext("t1", nil, nil)
	rc.Transition(StateFailed)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on transition after terminal state")
		}
	}()
	rc.Transition(StateFetching)
}

func TestRunContext_RunIDAssigned(t *testing.T) {
	a := NewRunContext("t1", nil, nil)
	b := NewRunContext("t1", nil, nil)
	if a.RunID == "" || a.RunID == b.RunID {
		t.Fatalf("run IDs not unique: %q vs %q", a.RunID, b.RunID)
	}
}

func TestSkipError(t *testing.T) {
	err := Skip("empty result for %s", "t1")
	if !IsSkip(err) {
		t.Fatalf("IsSkip=false")
	}
	if IsSkip(errors.New("boom")) {
		t.Fatalf("IsSkip matched plain error")
	}
	if err.Error() != "empty result for t1" {
		t.Fatalf("Error()=%q", err.Error())
	}
}

func TestPermanentError(t *testing.T) {
	base := errors.New("too large")
	err := fmt.Errorf("push: %w", Permanent(base))
	if !IsPermanent(err) {
		t.Fatalf("IsPermanent=false through wrapping")
	}
	if !errors.Is(err, base) {
		t.Fatalf("base error lost")
	}
	if Permanent(nil) != nil {
		t.Fatalf("Permanent(nil) != nil")
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateSucceeded, StateSkipped, StateFailed} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StatePending, StateFetching, StateDelivering} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
