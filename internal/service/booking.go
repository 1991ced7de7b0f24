package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"guardline/internal/model"
	"guardline/internal/queue"
	"guardline/internal/store"
	"guardline/internal/utils"
)

// Publisher emits a booking status event after a successful write.  The
// queue publisher satisfies it in production; a nil publisher disables
// events (tests, degraded startup).
type Publisher interface {
	PublishBookingStatus(ctx context.Context, ev queue.BookingStatusEvent) error
}

// BookingService validates booking requests, drives the status state
// machine and delegates persistence to the store, which handles the
// primary-first/fallback-on-transport-failure policy.  It is the only
// component that mutates booking status.
type BookingService struct {
	Store     store.Store
	Publisher Publisher
}

func NewBookingService(s store.Store, p Publisher) *BookingService {
	return &BookingService{Store: s, Publisher: p}
}

// Actor identifies who is performing an operation, as extracted from the
// verified access token.
type Actor struct {
	ID   string
	Role string
}

// SubmitRequest carries a client's booking request.  ClientID comes from
// the authenticated identity, never from the request body.
type SubmitRequest struct {
	ClientID      string
	ServiceType   string
	Pickup        model.Stop
	Destination   model.Stop
	ScheduledAt   string // RFC 3339; validated here
	DurationHours int
	Personnel     model.Personnel
	Vehicles      model.Vehicles
	Contact       model.Contact
}

// Submit validates the request, assigns a unique booking code and the
// initial `requested` status, and persists the booking.  Validation
// failures are business errors and leave no record in either store.
func (s *BookingService) Submit(ctx context.Context, req SubmitRequest) (model.Booking, error) {
	b, err := buildBooking(req)
	if err != nil {
		return model.Booking{}, err
	}
	b.Code = utils.NewBookingCode()
	b.Status = model.StatusRequested

	created, err := s.Store.CreateBooking(ctx, b)
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(ctx, created, "")
	return created, nil
}

// buildBooking checks every required field and returns the unsaved booking.
func buildBooking(req SubmitRequest) (model.Booking, error) {
	if req.ClientID == "" {
		return model.Booking{}, fmt.Errorf("%w: client identity missing", ErrValidation)
	}
	if err := validStop("pickup", req.Pickup); err != nil {
		return model.Booking{}, err
	}
	if err := validStop("destination", req.Destination); err != nil {
		return model.Booking{}, err
	}
	if req.Personnel.Protectors < 1 {
		return model.Booking{}, fmt.Errorf("%w: at least one protector is required", ErrValidation)
	}
	if req.Personnel.Escorts < 0 {
		return model.Booking{}, fmt.Errorf("%w: escorts must not be negative", ErrValidation)
	}
	if req.Vehicles.ArmoredSUV < 0 || req.Vehicles.Sedan < 0 {
		return model.Booking{}, fmt.Errorf("%w: vehicle counts must not be negative", ErrValidation)
	}
	if req.Vehicles.ArmoredSUV+req.Vehicles.Sedan < 1 {
		return model.Booking{}, fmt.Errorf("%w: at least one vehicle is required", ErrValidation)
	}
	if !validPhone(req.Contact.Phone) {
		return model.Booking{}, fmt.Errorf("%w: contact phone is required", ErrValidation)
	}
	scheduledAt, err := utils.ParseRFC3339(req.ScheduledAt)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: scheduled_at must be RFC 3339", ErrValidation)
	}
	if req.DurationHours < 1 {
		return model.Booking{}, fmt.Errorf("%w: duration_hours must be at least 1", ErrValidation)
	}
	serviceType := strings.TrimSpace(req.ServiceType)
	if serviceType == "" {
		serviceType = "executive_escort"
	}
	return model.Booking{
		ClientID:      req.ClientID,
		ServiceType:   serviceType,
		Pickup:        req.Pickup,
		Destination:   req.Destination,
		ScheduledAt:   scheduledAt,
		DurationHours: req.DurationHours,
		Personnel:     req.Personnel,
		Vehicles:      req.Vehicles,
		Contact:       req.Contact,
	}, nil
}

func validStop(name string, s model.Stop) error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("%w: %s address is required", ErrValidation, name)
	}
	if s.Lat < -90 || s.Lat > 90 || s.Lng < -180 || s.Lng > 180 {
		return fmt.Errorf("%w: %s coordinates out of range", ErrValidation, name)
	}
	if s.Lat == 0 && s.Lng == 0 {
		return fmt.Errorf("%w: %s coordinates are required", ErrValidation, name)
	}
	return nil
}

func validPhone(p string) bool {
	p = strings.TrimSpace(p)
	if len(p) < 5 {
		return false
	}
	for i, r := range p {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return true
}

// Transition applies a status change on behalf of an actor, enforcing both
// the state machine and the authorization rules: only an operator advances
// the forward path, and accepting a booking assigns that operator; only the
// owning client or an operator may cancel.
func (s *BookingService) Transition(ctx context.Context, bookingID string, next model.Status, actor Actor) (model.Booking, error) {
	if !model.ValidStatus(next) || next == model.StatusRequested {
		return model.Booking{}, fmt.Errorf("%w: unknown target status %q", ErrValidation, next)
	}
	b, err := s.Store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if err := model.CanTransition(b.Status, next); err != nil {
		return model.Booking{}, err
	}
	if next == model.StatusCancelled {
		if actor.Role != model.RoleOperator && actor.ID != b.ClientID {
			return model.Booking{}, fmt.Errorf("%w: only the owning client or an operator may cancel", ErrForbidden)
		}
	} else {
		if actor.Role != model.RoleOperator {
			return model.Booking{}, fmt.Errorf("%w: only an operator may advance a booking", ErrForbidden)
		}
	}

	var operatorID *string
	if next == model.StatusAccepted && b.OperatorID == nil {
		operatorID = &actor.ID
	}
	// The store applies the change as a compare-and-swap on prev, so a
	// concurrent transition that landed after our read surfaces as
	// InvalidTransitionError instead of being overwritten.
	prev := b.Status
	updated, err := s.Store.UpdateBookingStatus(ctx, bookingID, prev, next, operatorID)
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(ctx, updated, prev)
	return updated, nil
}

// GetByCode returns a booking by its human-readable code.
func (s *BookingService) GetByCode(ctx context.Context, code string) (model.Booking, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Booking{}, fmt.Errorf("%w: booking code is required", ErrValidation)
	}
	return s.Store.GetBookingByCode(ctx, code)
}

// List returns bookings visible to the actor: clients see their own,
// operators see everything the filter allows.
func (s *BookingService) List(ctx context.Context, f model.BookingFilter, actor Actor) ([]model.Booking, error) {
	if actor.Role != model.RoleOperator {
		f.ClientID = actor.ID
	}
	return s.Store.ListBookings(ctx, f)
}

// publish emits a status event, best effort.  A broker outage must never
// fail the booking write that already happened.
func (s *BookingService) publish(ctx context.Context, b model.Booking, prev model.Status) {
	if s.Publisher == nil {
		return
	}
	ev := queue.BookingStatusEvent{
		BookingID:      b.ID,
		Code:           b.Code,
		Status:         string(b.Status),
		PreviousStatus: string(prev),
		ClientID:       b.ClientID,
		Degraded:       b.Degraded,
		OccurredAt:     b.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if b.OperatorID != nil {
		ev.OperatorID = *b.OperatorID
	}
	if err := s.Publisher.PublishBookingStatus(ctx, ev); err != nil {
		log.Printf("booking: publish status event for %s: %v", b.Code, err)
	}
}
