package service

import (
	"context"

	"guardline/internal/model"
	"guardline/internal/store"
)

// OperatorQuery is the read side for operator-facing listings: bookings
// joined with the submitting client's profile fields.  It never mutates
// anything; it only composes data owned by the booking service and the
// profile storage.
type OperatorQuery struct {
	Store store.Store
}

func NewOperatorQuery(s store.Store) *OperatorQuery { return &OperatorQuery{Store: s} }

// ListForOperator returns bookings (with client profile fields) matching
// the filter, newest first.
func (q *OperatorQuery) ListForOperator(ctx context.Context, f model.BookingFilter) ([]model.BookingWithClient, error) {
	return q.Store.ListBookingsWithClient(ctx, f)
}
