// Package store defines the persistence contract for bookings, messages and
// user profiles, together with its two interchangeable implementations: the
// authoritative MySQL-backed primary and the in-memory degraded-mode
// fallback.  Callers never branch on which implementation served a request;
// the failover decorator logs the switch and nothing else leaks out.
package store

import (
	"context"

	"guardline/internal/model"
)

// Store is the persistence port.  All methods take a context so callers can
// bound the duration of networked calls; implementations must honour
// cancellation and deadlines.
type Store interface {
	// CreateBooking persists a new booking.  The implementation assigns
	// ID, CreatedAt and UpdatedAt; Code and status must already be set by
	// the caller.  A duplicate code yields ErrCodeExists.
	CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error)
	// GetBookingByID returns a booking by its opaque id, or ErrNotFound.
	GetBookingByID(ctx context.Context, id string) (model.Booking, error)
	// GetBookingByCode returns a booking by its human-readable code, or
	// ErrNotFound.
	GetBookingByCode(ctx context.Context, code string) (model.Booking, error)
	// ListBookings returns bookings matching the filter, newest first.
	ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error)
	// UpdateBookingStatus moves a booking from one status to another as a
	// single compare-and-swap: the write applies only while the stored
	// status still equals from, so two concurrent transitions validated
	// against the same snapshot cannot both land.  When operatorID is
	// non-nil it is recorded as the assigned operator.  Returns the
	// updated booking, ErrNotFound for an absent id, or
	// InvalidTransitionError when the stored status moved on.  Full
	// state-machine validation is the booking service's job, not the
	// store's.
	UpdateBookingStatus(ctx context.Context, id string, from, to model.Status, operatorID *string) (model.Booking, error)

	// AppendMessage persists a chat message.  The implementation assigns
	// ID and CreatedAt.  The referenced booking must exist (ErrNotFound).
	AppendMessage(ctx context.Context, m model.Message) (model.Message, error)
	// ListMessages returns a booking's messages ordered by CreatedAt
	// ascending.
	ListMessages(ctx context.Context, bookingID string) ([]model.Message, error)

	// CreateUser persists a new account.  A duplicate email yields
	// ErrEmailExists.
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	// GetUserByEmail returns a user by normalized email, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	// GetUserByID returns a user by id, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (model.User, error)

	// ListBookingsWithClient is the operator read side: bookings joined
	// with the submitting client's profile fields, newest first.
	ListBookingsWithClient(ctx context.Context, f model.BookingFilter) ([]model.BookingWithClient, error)
}
