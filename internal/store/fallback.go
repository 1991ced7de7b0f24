package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"guardline/internal/model"
)

// Demo credentials seeded into the fallback store so the service stays
// demonstrable when the primary is down.  The password is hashed at
// construction; the raw value exists only for local sign-in.
const (
	DemoClientEmail   = "demo.client@guardline.dev"
	DemoOperatorEmail = "demo.operator@guardline.dev"
	DemoPassword      = "guardline-demo"
)

// FallbackStore is the in-process, volatile implementation of Store.  It is
// used strictly as a last resort when the primary is unreachable.  Writes
// made here are not replicated back to the primary when connectivity
// recovers; every record written through this store carries the Degraded
// marker and DegradedBookings exposes them as the reconciliation hook.
//
// All state sits behind a single mutex.  The expected scale in degraded
// mode is small, so whole-store serialization is simpler than per-code
// locking and still rules out interleaved read-modify-write corruption.
type FallbackStore struct {
	mu           sync.Mutex
	bookings     map[string]model.Booking // by id
	codeIndex    map[string]string        // code -> id
	messages     map[string][]model.Message
	usersByID    map[string]model.User
	usersByEmail map[string]string // email -> id
	now          func() time.Time
}

// NewFallbackStore returns a fallback store seeded with deterministic
// placeholder data: a demo client, a demo operator and one completed
// historical booking with a short chat thread.
func NewFallbackStore() *FallbackStore {
	s := &FallbackStore{
		bookings:     make(map[string]model.Booking),
		codeIndex:    make(map[string]string),
		messages:     make(map[string][]model.Message),
		usersByID:    make(map[string]model.User),
		usersByEmail: make(map[string]string),
		now:          func() time.Time { return time.Now().UTC() },
	}
	s.seed()
	return s
}

func (s *FallbackStore) seed() {
	// MinCost keeps startup fast; these credentials guard nothing real.
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		panic("fallback: seed hash: " + err.Error())
	}
	seededAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	client := model.User{
		ID:           "fallback-client-1",
		Email:        DemoClientEmail,
		FullName:     "Demo Client",
		Phone:        "+10000000001",
		Role:         model.RoleClient,
		PasswordHash: string(hash),
		CreatedAt:    seededAt,
	}
	operator := model.User{
		ID:           "fallback-operator-1",
		Email:        DemoOperatorEmail,
		FullName:     "Demo Operator",
		Phone:        "+10000000002",
		Role:         model.RoleOperator,
		PasswordHash: string(hash),
		CreatedAt:    seededAt,
	}
	for _, u := range []model.User{client, operator} {
		s.usersByID[u.ID] = u
		s.usersByEmail[u.Email] = u.ID
	}

	opID := operator.ID
	booking := model.Booking{
		ID:            "fallback-booking-1",
		Code:          "REQ1768467600000",
		Status:        model.StatusCompleted,
		ClientID:      client.ID,
		OperatorID:    &opID,
		ServiceType:   "executive_escort",
		Pickup:        model.Stop{Address: "Hotel Meridian, 12 Harbour Rd", Lat: 51.5074, Lng: -0.1278},
		Destination:   model.Stop{Address: "Conference Centre, 3 King St", Lat: 51.5155, Lng: -0.1410},
		ScheduledAt:   seededAt.Add(24 * time.Hour),
		DurationHours: 4,
		Personnel:     model.Personnel{Protectors: 2, Escorts: 1},
		Vehicles:      model.Vehicles{ArmoredSUV: 1, Sedan: 1},
		Contact:       model.Contact{Name: "Demo Client", Phone: "+10000000001"},
		CreatedAt:     seededAt,
		UpdatedAt:     seededAt.Add(30 * time.Hour),
	}
	s.bookings[booking.ID] = booking
	s.codeIndex[booking.Code] = booking.ID
	s.messages[booking.ID] = []model.Message{
		{
			ID: "fallback-msg-1", BookingID: booking.ID,
			SenderID: operator.ID, SenderType: model.SenderOperator,
			Text: "Detail assigned, team briefed.", CreatedAt: seededAt.Add(time.Hour),
		},
		{
			ID: "fallback-msg-2", BookingID: booking.ID,
			SenderID: client.ID, SenderType: model.SenderClient,
			Text: "Understood, see you tomorrow.", CreatedAt: seededAt.Add(2 * time.Hour),
		},
	}
}

func (s *FallbackStore) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.codeIndex[b.Code]; exists {
		return model.Booking{}, ErrCodeExists
	}
	b.ID = uuid.NewString()
	now := s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	b.Degraded = true
	s.bookings[b.ID] = b
	s.codeIndex[b.Code] = b.ID
	return b, nil
}

func (s *FallbackStore) GetBookingByID(ctx context.Context, id string) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return b, nil
}

func (s *FallbackStore) GetBookingByCode(ctx context.Context, code string) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.codeIndex[code]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return s.bookings[id], nil
}

func (s *FallbackStore) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if matchesFilter(b, f) {
			out = append(out, b)
		}
	}
	sortBookingsNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *FallbackStore) UpdateBookingStatus(ctx context.Context, id string, from, to model.Status, operatorID *string) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	// Compare-and-swap under the store mutex; a caller holding a stale
	// snapshot must not overwrite a transition that landed in between.
	if b.Status != from {
		return model.Booking{}, &model.InvalidTransitionError{From: b.Status, To: to}
	}
	b.Status = to
	if operatorID != nil {
		b.OperatorID = operatorID
	}
	b.UpdatedAt = s.now()
	b.Degraded = true
	s.bookings[id] = b
	return b, nil
}

func (s *FallbackStore) AppendMessage(ctx context.Context, m model.Message) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[m.BookingID]; !ok {
		return model.Message{}, ErrNotFound
	}
	m.ID = uuid.NewString()
	m.CreatedAt = s.now()
	s.messages[m.BookingID] = append(s.messages[m.BookingID], m)
	return m, nil
}

func (s *FallbackStore) ListMessages(ctx context.Context, bookingID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[bookingID]; !ok {
		return nil, ErrNotFound
	}
	msgs := s.messages[bookingID]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *FallbackStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := s.usersByEmail[u.Email]; exists {
		return model.User{}, ErrEmailExists
	}
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()
	s.usersByID[u.ID] = u
	s.usersByEmail[u.Email] = u.ID
	return u, nil
}

func (s *FallbackStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return s.usersByID[id], nil
}

func (s *FallbackStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usersByID[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *FallbackStore) ListBookingsWithClient(ctx context.Context, f model.BookingFilter) ([]model.BookingWithClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.BookingWithClient{}
	for _, b := range s.bookings {
		if !matchesFilter(b, f) {
			continue
		}
		bc := model.BookingWithClient{Booking: b}
		if u, ok := s.usersByID[b.ClientID]; ok {
			bc.ClientEmail, bc.ClientName, bc.ClientPhone = u.Email, u.FullName, u.Phone
		}
		out = append(out, bc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// DegradedBookings returns bookings written while the primary was down.
// Reconciliation back into the primary is intentionally not implemented;
// this accessor is the extension point for a future replay job so degraded
// writes are at least enumerable instead of silently lost.
func (s *FallbackStore) DegradedBookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if b.Degraded {
			out = append(out, b)
		}
	}
	sortBookingsNewestFirst(out)
	return out
}

func matchesFilter(b model.Booking, f model.BookingFilter) bool {
	if f.ClientID != "" && b.ClientID != f.ClientID {
		return false
	}
	if f.OperatorID != "" && (b.OperatorID == nil || *b.OperatorID != f.OperatorID) {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

func sortBookingsNewestFirst(bs []model.Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].ID > bs[j].ID
		}
		return bs[i].CreatedAt.After(bs[j].CreatedAt)
	})
}
