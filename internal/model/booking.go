package model

import "time"

// Booking represents a single protective-service request as stored in the
// `bookings` table of the authoritative store (or its in-memory mirror in
// degraded mode).  A booking is never physically deleted; cancellation is a
// terminal status.
//
// Fields:
//
//	ID            – opaque identifier generated by the store (UUID).
//	Code          – human-readable unique code, format REQ<digits>, immutable.
//	Status        – lifecycle status, see status.go.
//	ClientID      – user who submitted the request.
//	OperatorID    – operator assigned on acceptance (nil until then).
//	ServiceType   – requested protection type (e.g. "executive_escort").
//	Pickup        – pickup stop (address + coordinates).
//	Destination   – destination stop.
//	ScheduledAt   – requested pickup date/time (UTC).
//	DurationHours – expected engagement duration.
//	Personnel     – requested personnel counts.
//	Vehicles      – requested vehicle counts.
//	Contact       – on-site contact details.
//	Degraded      – true when the record was written by the fallback store.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last mutation timestamp.
type Booking struct {
	ID            string    `json:"id"`
	Code          string    `json:"booking_code"`
	Status        Status    `json:"status"`
	ClientID      string    `json:"client_id"`
	OperatorID    *string   `json:"operator_id,omitempty"`
	ServiceType   string    `json:"service_type"`
	Pickup        Stop      `json:"pickup"`
	Destination   Stop      `json:"destination"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	DurationHours int       `json:"duration_hours"`
	Personnel     Personnel `json:"personnel"`
	Vehicles      Vehicles  `json:"vehicles"`
	Contact       Contact   `json:"contact"`
	Degraded      bool      `json:"degraded,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Stop is one end of the protected movement.
type Stop struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Personnel holds the requested headcount per role.
type Personnel struct {
	Protectors int `json:"protectors"`
	Escorts    int `json:"escorts"`
}

// Vehicles holds the requested vehicle counts per class.
type Vehicles struct {
	ArmoredSUV int `json:"armoredSuv"`
	Sedan      int `json:"sedan"`
}

// Contact is the on-site point of contact for the detail.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// BookingWithClient joins a booking with the submitting client's profile
// fields for operator-facing listings.  Read-only composition; it never
// feeds back into writes.
type BookingWithClient struct {
	Booking
	ClientEmail string `json:"client_email"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
}

// BookingFilter narrows booking listings.  Zero values mean "no filter".
type BookingFilter struct {
	ClientID   string
	OperatorID string
	Status     Status
	Limit      int
}
