package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"guardline/internal/model"
)

// PrimaryStore is the authoritative, networked implementation of Store,
// backed by MySQL.  Any call may fail with a business error (translated to
// the taxonomy in errors.go) or a transport error, which is returned as-is
// so IsTransport can classify it.
type PrimaryStore struct{ DB *sql.DB }

func NewPrimaryStore(db *sql.DB) *PrimaryStore { return &PrimaryStore{DB: db} }

const bookingColumns = `id, code, status, client_id, operator_id, service_type,
	pickup_address, pickup_lat, pickup_lng, dest_address, dest_lat, dest_lng,
	scheduled_at, duration_hours, protectors, escorts, armored_suv, sedan,
	contact_name, contact_phone, created_at, updated_at`

// CreateBooking inserts a booking and returns it with store-assigned fields.
func (s *PrimaryStore) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	b.ID = uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)
	b.CreatedAt, b.UpdatedAt = now, now
	b.Degraded = false
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.Code, string(b.Status), b.ClientID, b.OperatorID, b.ServiceType,
		b.Pickup.Address, b.Pickup.Lat, b.Pickup.Lng,
		b.Destination.Address, b.Destination.Lat, b.Destination.Lng,
		b.ScheduledAt, b.DurationHours,
		b.Personnel.Protectors, b.Personnel.Escorts,
		b.Vehicles.ArmoredSUV, b.Vehicles.Sedan,
		b.Contact.Name, b.Contact.Phone, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.Booking{}, ErrCodeExists
		}
		return model.Booking{}, err
	}
	return b, nil
}

// GetBookingByID fetches a booking by its opaque id.
func (s *PrimaryStore) GetBookingByID(ctx context.Context, id string) (model.Booking, error) {
	return s.getBooking(ctx, "id", id)
}

// GetBookingByCode fetches a booking by its human-readable code.
func (s *PrimaryStore) GetBookingByCode(ctx context.Context, code string) (model.Booking, error) {
	return s.getBooking(ctx, "code", code)
}

func (s *PrimaryStore) getBooking(ctx context.Context, column, value string) (model.Booking, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE `+column+`=? LIMIT 1`, value)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

// ListBookings returns bookings matching the filter, newest first.
func (s *PrimaryStore) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	query, args := buildBookingQuery(`SELECT `+bookingColumns+` FROM bookings`, f)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBookingStatus moves the status from -> to (and optionally assigns
// the operator) and returns the updated row.  The WHERE clause matches the
// expected previous status, so a transition validated against a stale read
// affects zero rows instead of clobbering a later write.
func (s *PrimaryStore) UpdateBookingStatus(ctx context.Context, id string, from, to model.Status, operatorID *string) (model.Booking, error) {
	var (
		res sql.Result
		err error
	)
	if operatorID != nil {
		res, err = s.DB.ExecContext(ctx,
			`UPDATE bookings SET status=?, operator_id=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND status=?`,
			string(to), *operatorID, id, string(from))
	} else {
		res, err = s.DB.ExecContext(ctx,
			`UPDATE bookings SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND status=?`,
			string(to), id, string(from))
	}
	if err != nil {
		return model.Booking{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero rows: the booking is absent, or its status moved on since
		// the caller read it.  A follow-up read settles which.
		current, getErr := s.getBooking(ctx, "id", id)
		if getErr != nil {
			return model.Booking{}, getErr
		}
		return model.Booking{}, &model.InvalidTransitionError{From: current.Status, To: to}
	}
	return s.getBooking(ctx, "id", id)
}

// AppendMessage inserts a chat message for an existing booking.
func (s *PrimaryStore) AppendMessage(ctx context.Context, m model.Message) (model.Message, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC().Truncate(time.Second)
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO messages (id, booking_id, sender_id, sender_type, text, created_at)
		 VALUES (?,?,?,?,?,?)`,
		m.ID, m.BookingID, m.SenderID, m.SenderType, m.Text, m.CreatedAt)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == 1452 { // FK: booking absent
			return model.Message{}, ErrNotFound
		}
		return model.Message{}, err
	}
	return m, nil
}

// ListMessages returns a booking's thread ordered by created_at ascending.
func (s *PrimaryStore) ListMessages(ctx context.Context, bookingID string) ([]model.Message, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, booking_id, sender_id, sender_type, text, created_at
		 FROM messages WHERE booking_id=? ORDER BY created_at ASC, id ASC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.BookingID, &m.SenderID, &m.SenderType, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateUser inserts a profile row.
func (s *PrimaryStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, phone, role, password_hash, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		u.ID, u.Email, u.FullName, u.Phone, u.Role, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return u, nil
}

// GetUserByEmail fetches a user by normalized email.
func (s *PrimaryStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.getUser(ctx, "email", email)
}

// GetUserByID fetches a user by id.
func (s *PrimaryStore) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *PrimaryStore) getUser(ctx context.Context, column, value string) (model.User, error) {
	var u model.User
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, email, full_name, phone, role, password_hash, created_at
		 FROM users WHERE `+column+`=? LIMIT 1`, value).
		Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// ListBookingsWithClient joins bookings with the submitting client's profile
// fields for operator listings.
func (s *PrimaryStore) ListBookingsWithClient(ctx context.Context, f model.BookingFilter) ([]model.BookingWithClient, error) {
	base := `SELECT b.id, b.code, b.status, b.client_id, b.operator_id, b.service_type,
		b.pickup_address, b.pickup_lat, b.pickup_lng, b.dest_address, b.dest_lat, b.dest_lng,
		b.scheduled_at, b.duration_hours, b.protectors, b.escorts, b.armored_suv, b.sedan,
		b.contact_name, b.contact_phone, b.created_at, b.updated_at,
		u.email, u.full_name, u.phone
		FROM bookings b JOIN users u ON u.id = b.client_id`
	query, args := buildBookingQuery(base, f)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingWithClient{}
	for rows.Next() {
		var (
			bc       model.BookingWithClient
			operator sql.NullString
			status   string
		)
		b := &bc.Booking
		if err := rows.Scan(&b.ID, &b.Code, &status, &b.ClientID, &operator, &b.ServiceType,
			&b.Pickup.Address, &b.Pickup.Lat, &b.Pickup.Lng,
			&b.Destination.Address, &b.Destination.Lat, &b.Destination.Lng,
			&b.ScheduledAt, &b.DurationHours,
			&b.Personnel.Protectors, &b.Personnel.Escorts,
			&b.Vehicles.ArmoredSUV, &b.Vehicles.Sedan,
			&b.Contact.Name, &b.Contact.Phone, &b.CreatedAt, &b.UpdatedAt,
			&bc.ClientEmail, &bc.ClientName, &bc.ClientPhone); err != nil {
			return nil, err
		}
		b.Status = model.Status(status)
		if operator.Valid {
			b.OperatorID = &operator.String
		}
		out = append(out, bc)
	}
	return out, rows.Err()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanBooking(row scanner) (model.Booking, error) {
	var (
		b        model.Booking
		operator sql.NullString
		status   string
	)
	err := row.Scan(&b.ID, &b.Code, &status, &b.ClientID, &operator, &b.ServiceType,
		&b.Pickup.Address, &b.Pickup.Lat, &b.Pickup.Lng,
		&b.Destination.Address, &b.Destination.Lat, &b.Destination.Lng,
		&b.ScheduledAt, &b.DurationHours,
		&b.Personnel.Protectors, &b.Personnel.Escorts,
		&b.Vehicles.ArmoredSUV, &b.Vehicles.Sedan,
		&b.Contact.Name, &b.Contact.Phone, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	b.Status = model.Status(status)
	if operator.Valid {
		b.OperatorID = &operator.String
	}
	return b, nil
}

// buildBookingQuery appends WHERE/ORDER BY/LIMIT clauses for a filter.  The
// column prefix is inferred from the base query to keep the JOIN variant
// unambiguous.
func buildBookingQuery(base string, f model.BookingFilter) (string, []any) {
	prefix := ""
	if strings.Contains(base, " JOIN ") {
		prefix = "b."
	}
	where := []string{}
	args := []any{}
	if f.ClientID != "" {
		where = append(where, prefix+"client_id=?")
		args = append(args, f.ClientID)
	}
	if f.OperatorID != "" {
		where = append(where, prefix+"operator_id=?")
		args = append(args, f.OperatorID)
	}
	if f.Status != "" {
		where = append(where, prefix+"status=?")
		args = append(args, string(f.Status))
	}
	q := base
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + prefix + "created_at DESC, " + prefix + "id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return q, args
}

// isDuplicate reports a MySQL unique-key violation (error 1062).
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
