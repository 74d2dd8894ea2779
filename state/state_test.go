package state

import "testing"

func TestGameState_Transitions(t *testing.T) {
	next, err := Waiting.Transition(Playing)
	if err != nil {
		t.Fatalf("waiting -> playing should be allowed, got error: %v", err)
	}
	if next != Playing {
		t.Errorf("Expected state %q, got %q", Playing, next)
	}

	next, err = Playing.Transition(Waiting)
	if err != nil {
		t.Fatalf("playing -> waiting should be allowed, got error: %v", err)
	}
	if next != Waiting {
		t.Errorf("Expected state %q, got %q", Waiting, next)
	}
}

func TestGameState_BlockedTransitions(t *testing.T) {
	if _, err := Waiting.Transition(Waiting); err != ErrTransitionNotAllowed {
		t.Errorf("Expected ErrTransitionNotAllowed for waiting -> waiting, got: %v", err)
	}
	if _, err := Playing.Transition(Playing); err != ErrTransitionNotAllowed {
		t.Errorf("Expected ErrTransitionNotAllowed for playing -> playing, got: %v", err)
	}
}

func TestRound_ResolveOnce(t *testing.T) {
	var r Round
	if r.Resolve() {
		t.Error("Resolve should fail before the round is opened")
	}

	r.Open()
	if !r.Active || r.Answered {
		t.Fatalf("Open should arm the round, got Active=%v Answered=%v", r.Active, r.Answered)
	}

	if !r.Resolve() {
		t.Fatal("First Resolve on an open round should succeed")
	}
	if r.Resolve() {
		t.Error("Second Resolve should fail, the round is already answered")
	}
	if r.Active {
		t.Error("Resolved round should no longer be active")
	}
}

func TestRound_Reset(t *testing.T) {
	var r Round
	r.Open()
	r.Resolve()
	r.Reset()

	if r.Active || r.Answered {
		t.Errorf("Reset should clear both flags, got Active=%v Answered=%v", r.Active, r.Answered)
	}
}
