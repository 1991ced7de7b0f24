package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"guardline/internal/model"
)

func sampleBooking(clientID, code string) model.Booking {
	return model.Booking{
		Code:          code,
		Status:        model.StatusRequested,
		ClientID:      clientID,
		ServiceType:   "executive_escort",
		Pickup:        model.Stop{Address: "1 Pier Rd", Lat: 51.50, Lng: -0.12},
		Destination:   model.Stop{Address: "9 Vault St", Lat: 51.52, Lng: -0.14},
		ScheduledAt:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		DurationHours: 3,
		Personnel:     model.Personnel{Protectors: 1},
		Vehicles:      model.Vehicles{ArmoredSUV: 1},
		Contact:       model.Contact{Name: "A. Client", Phone: "+15550001111"},
	}
}

func TestFallback_SeededDemoData(t *testing.T) {
	s := NewFallbackStore()
	ctx := context.Background()

	u, err := s.GetUserByEmail(ctx, DemoClientEmail)
	if err != nil {
		t.Fatalf("seeded demo client missing: %v", err)
	}
	if u.Role != model.RoleClient {
		t.Fatalf("demo client role = %s", u.Role)
	}

	bs, err := s.ListBookings(ctx, model.BookingFilter{})
	if err != nil || len(bs) == 0 {
		t.Fatalf("expected seeded bookings, got %d (%v)", len(bs), err)
	}
	msgs, err := s.ListMessages(ctx, bs[len(bs)-1].ID)
	if err != nil || len(msgs) == 0 {
		t.Fatalf("expected seeded messages, got %d (%v)", len(msgs), err)
	}
}

func TestFallback_CreateAndRoundTripByCode(t *testing.T) {
	s := NewFallbackStore()
	ctx := context.Background()

	in := sampleBooking("client-1", "REQ1756600000000001")
	created, err := s.CreateBooking(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected store-assigned id")
	}
	if !created.Degraded {
		t.Fatal("fallback writes must carry the degraded marker")
	}

	got, err := s.GetBookingByCode(ctx, in.Code)
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	got.ID, got.CreatedAt, got.UpdatedAt, got.Degraded = "", time.Time{}, time.Time{}, false
	want := in
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestFallback_DuplicateCodeRejected(t *testing.T) {
	s := NewFallbackStore()
	ctx := context.Background()

	if _, err := s.CreateBooking(ctx, sampleBooking("c", "REQ42")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.CreateBooking(ctx, sampleBooking("c", "REQ42")); !errors.Is(err, ErrCodeExists) {
		t.Fatalf("expected ErrCodeExists, got %v", err)
	}
}

func TestFallback_DegradedBookingsHook(t *testing.T) {
	s := NewFallbackStore()
	ctx := context.Background()

	if n := len(s.DegradedBookings()); n != 0 {
		t.Fatalf("seed data must not count as degraded, got %d", n)
	}
	if _, err := s.CreateBooking(ctx, sampleBooking("c", "REQ100")); err != nil {
		t.Fatalf("create: %v", err)
	}
	got := s.DegradedBookings()
	if len(got) != 1 || got[0].Code != "REQ100" {
		t.Fatalf("expected one degraded booking REQ100, got %+v", got)
	}
}

func TestFallback_UpdateStatusIsCompareAndSwap(t *testing.T) {
	s := NewFallbackStore()
	ctx := context.Background()

	b, err := s.CreateBooking(ctx, sampleBooking("c", "REQ900"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpdateBookingStatus(ctx, b.ID, model.StatusRequested, model.StatusCancelled, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// A writer still holding the pre-cancel snapshot must not land.
	var inv *model.InvalidTransitionError
	_, err = s.UpdateBookingStatus(ctx, b.ID, model.StatusRequested, model.StatusAccepted, nil)
	if !errors.As(err, &inv) {
		t.Fatalf("stale update: got %v, want InvalidTransitionError", err)
	}
	if inv.From != model.StatusCancelled || inv.To != model.StatusAccepted {
		t.Fatalf("error carries %s -> %s", inv.From, inv.To)
	}

	got, err := s.GetBookingByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Fatalf("stale write resurrected the booking to %s", got.Status)
	}

	if _, err := s.UpdateBookingStatus(ctx, "no-such-id", model.StatusRequested, model.StatusAccepted, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestFallback_MessagesOrderedAscending(t *testing.T) {
	s := NewFallbackStore()
	ctx := context.Background()

	b, err := s.CreateBooking(ctx, sampleBooking("c", "REQ7"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := s.AppendMessage(ctx, model.Message{
			BookingID: b.ID, SenderID: "c", SenderType: model.SenderClient,
			Text: fmt.Sprintf("message %d", i),
		}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	msgs, err := s.ListMessages(ctx, b.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Fatalf("timestamps not non-decreasing at %d", i)
		}
	}

	if _, err := s.ListMessages(ctx, "no-such-booking"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown booking, got %v", err)
	}
}

func TestFallback_ConcurrentCreates(t *testing.T) {
	s := NewFallbackStore()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateBooking(ctx, sampleBooking("c", fmt.Sprintf("REQ%06d", i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent create: %v", err)
		}
	}
	bs, err := s.ListBookings(ctx, model.BookingFilter{ClientID: "c"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bs) != n {
		t.Fatalf("lost writes: expected %d bookings, got %d", n, len(bs))
	}
}

func TestFallback_ListBookingsWithClientJoins(t *testing.T) {
	s := NewFallbackStore()
	ctx := context.Background()

	rows, err := s.ListBookingsWithClient(ctx, model.BookingFilter{Status: model.StatusCompleted})
	if err != nil {
		t.Fatalf("list with client: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one completed seeded booking, got %d", len(rows))
	}
	if rows[0].ClientEmail != DemoClientEmail {
		t.Fatalf("join missing client email, got %q", rows[0].ClientEmail)
	}
}
