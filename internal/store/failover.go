package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"guardline/internal/model"
)

// DefaultPrimaryTimeout bounds a single primary attempt when no explicit
// timeout is configured.
const DefaultPrimaryTimeout = 3 * time.Second

// Failover implements Store by trying the primary first and, on a
// transport-classified failure only, retrying exactly once against the
// fallback.  Business errors from either side propagate unchanged.  The
// primary attempt runs under a bounded timeout; exceeding it counts as a
// transport failure.  There is no retry loop and the two attempts never
// overlap.
type Failover struct {
	primary  Store
	fallback Store
	timeout  time.Duration
}

// NewFailover wires the two stores behind one Store.  A non-positive
// timeout falls back to DefaultPrimaryTimeout.
func NewFailover(primary, fallback Store, timeout time.Duration) *Failover {
	if timeout <= 0 {
		timeout = DefaultPrimaryTimeout
	}
	return &Failover{primary: primary, fallback: fallback, timeout: timeout}
}

// attempt runs op against the primary under the bounded timeout, then once
// against the fallback if and only if the primary failed with a transport
// error.  A fallback failure that is not part of the business taxonomy is
// reported as ErrUnavailable carrying both causes.
func attempt[T any](ctx context.Context, f *Failover, op string, call func(context.Context, Store) (T, error)) (T, error) {
	pctx, cancel := context.WithTimeout(ctx, f.timeout)
	v, err := call(pctx, f.primary)
	cancel()
	if err == nil || !IsTransport(err) {
		return v, err
	}
	log.Printf("failover: %s: primary unreachable, trying fallback: %v", op, err)

	v, fbErr := call(ctx, f.fallback)
	if fbErr == nil || isBusiness(fbErr) {
		return v, fbErr
	}
	var zero T
	return zero, fmt.Errorf("%w: %s: primary: %v; fallback: %v", ErrUnavailable, op, err, fbErr)
}

func (f *Failover) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	return attempt(ctx, f, "create booking", func(ctx context.Context, s Store) (model.Booking, error) {
		return s.CreateBooking(ctx, b)
	})
}

func (f *Failover) GetBookingByID(ctx context.Context, id string) (model.Booking, error) {
	return attempt(ctx, f, "get booking", func(ctx context.Context, s Store) (model.Booking, error) {
		return s.GetBookingByID(ctx, id)
	})
}

func (f *Failover) GetBookingByCode(ctx context.Context, code string) (model.Booking, error) {
	return attempt(ctx, f, "get booking by code", func(ctx context.Context, s Store) (model.Booking, error) {
		return s.GetBookingByCode(ctx, code)
	})
}

func (f *Failover) ListBookings(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error) {
	return attempt(ctx, f, "list bookings", func(ctx context.Context, s Store) ([]model.Booking, error) {
		return s.ListBookings(ctx, filter)
	})
}

func (f *Failover) UpdateBookingStatus(ctx context.Context, id string, from, to model.Status, operatorID *string) (model.Booking, error) {
	return attempt(ctx, f, "update booking status", func(ctx context.Context, s Store) (model.Booking, error) {
		return s.UpdateBookingStatus(ctx, id, from, to, operatorID)
	})
}

func (f *Failover) AppendMessage(ctx context.Context, m model.Message) (model.Message, error) {
	return attempt(ctx, f, "append message", func(ctx context.Context, s Store) (model.Message, error) {
		return s.AppendMessage(ctx, m)
	})
}

func (f *Failover) ListMessages(ctx context.Context, bookingID string) ([]model.Message, error) {
	return attempt(ctx, f, "list messages", func(ctx context.Context, s Store) ([]model.Message, error) {
		return s.ListMessages(ctx, bookingID)
	})
}

func (f *Failover) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	return attempt(ctx, f, "create user", func(ctx context.Context, s Store) (model.User, error) {
		return s.CreateUser(ctx, u)
	})
}

func (f *Failover) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return attempt(ctx, f, "get user by email", func(ctx context.Context, s Store) (model.User, error) {
		return s.GetUserByEmail(ctx, email)
	})
}

func (f *Failover) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return attempt(ctx, f, "get user", func(ctx context.Context, s Store) (model.User, error) {
		return s.GetUserByID(ctx, id)
	})
}

func (f *Failover) ListBookingsWithClient(ctx context.Context, filter model.BookingFilter) ([]model.BookingWithClient, error) {
	return attempt(ctx, f, "list bookings with client", func(ctx context.Context, s Store) ([]model.BookingWithClient, error) {
		return s.ListBookingsWithClient(ctx, filter)
	})
}
