// Package queue defines the payloads exchanged over the message broker and
// the background consumer that records booking status changes.
package queue

// BookingStatusEvent is published whenever a booking is created or its
// status changes.  It carries enough for downstream consumers to log or
// notify without querying the store.
type BookingStatusEvent struct {
	BookingID      string `json:"booking_id"`
	Code           string `json:"booking_code"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	ClientID       string `json:"client_id"`
	OperatorID     string `json:"operator_id,omitempty"`
	Degraded       bool   `json:"degraded,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}
