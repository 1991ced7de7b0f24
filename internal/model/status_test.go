package model

import (
	"errors"
	"testing"
)

func TestCanTransition_ForwardPath(t *testing.T) {
	path := []Status{StatusRequested, StatusAccepted, StatusEnRoute, StatusInProgress, StatusCompleted}
	for i := 0; i < len(path)-1; i++ {
		if err := CanTransition(path[i], path[i+1]); err != nil {
			t.Fatalf("expected %s -> %s to be valid, got %v", path[i], path[i+1], err)
		}
	}
}

func TestCanTransition_CancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []Status{StatusRequested, StatusAccepted, StatusEnRoute, StatusInProgress} {
		if err := CanTransition(from, StatusCancelled); err != nil {
			t.Fatalf("expected cancel from %s to be valid, got %v", from, err)
		}
	}
}

func TestCanTransition_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		from, to Status
	}{
		{"backward", StatusEnRoute, StatusAccepted},
		{"skip forward", StatusRequested, StatusEnRoute},
		{"same state", StatusAccepted, StatusAccepted},
		{"out of completed", StatusCompleted, StatusCancelled},
		{"out of cancelled", StatusCancelled, StatusAccepted},
		{"unknown target", StatusRequested, Status("archived")},
		{"unknown source", Status(""), StatusAccepted},
	}
	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to)
		if err == nil {
			t.Fatalf("%s: expected %s -> %s to be rejected", tc.name, tc.from, tc.to)
		}
		var inv *InvalidTransitionError
		if !errors.As(err, &inv) {
			t.Fatalf("%s: expected InvalidTransitionError, got %T", tc.name, err)
		}
		if inv.From != tc.from || inv.To != tc.to {
			t.Fatalf("%s: error carries %s -> %s", tc.name, inv.From, inv.To)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Fatal("completed and cancelled must be terminal")
	}
	for _, s := range []Status{StatusRequested, StatusAccepted, StatusEnRoute, StatusInProgress} {
		if s.Terminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}
