package model

import "fmt"

// Status is the lifecycle state of a booking.  The zero value is invalid so
// that an unset status can never pass a transition check.
type Status string

const (
	StatusRequested  Status = "requested"
	StatusAccepted   Status = "accepted"
	StatusEnRoute    Status = "en_route"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// InvalidTransitionError reports a status change that violates the booking
// state machine.  It is surfaced to the caller and never silently corrected.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition %s -> %s", e.From, e.To)
}

// statusRank orders the forward path of the machine.  Terminal states carry
// the highest ranks so that no transition out of them can ever be forward.
var statusRank = map[Status]int{
	StatusRequested:  0,
	StatusAccepted:   1,
	StatusEnRoute:    2,
	StatusInProgress: 3,
	StatusCompleted:  4,
	StatusCancelled:  5,
}

// ValidStatus reports whether s names a known lifecycle state.
func ValidStatus(s Status) bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition validates a single status change.  The forward path advances
// one step at a time (requested -> accepted -> en_route -> in_progress ->
// completed); cancelled is reachable from any non-terminal state.  Any other
// change, including a move to an earlier state, yields InvalidTransitionError.
func CanTransition(from, to Status) error {
	if !ValidStatus(from) || !ValidStatus(to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	if from.Terminal() {
		return &InvalidTransitionError{From: from, To: to}
	}
	if to == StatusCancelled {
		return nil
	}
	if statusRank[to] == statusRank[from]+1 {
		return nil
	}
	return &InvalidTransitionError{From: from, To: to}
}
