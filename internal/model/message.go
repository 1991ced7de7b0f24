package model

import "time"

// Sender types for per-booking chat messages.
const (
	SenderClient   = "client"
	SenderOperator = "operator"
)

// Message is one entry in a booking's chat thread.  Messages are append-only:
// no edits, no deletes.  Listings are ordered by CreatedAt ascending.
type Message struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	SenderID   string    `json:"sender_id"`
	SenderType string    `json:"sender_type"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
