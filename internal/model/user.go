package model

import "time"

// Roles stored in the users table and carried in JWT claims.
const (
	RoleClient   = "CLIENT"
	RoleOperator = "OPERATOR"
)

// User represents an account record as stored in the `users` table.  Each
// field corresponds to a column.  The password is kept only as a bcrypt
// hash; verification is owned by the auth gateway.
//
// Fields:
//
//	ID           – opaque identifier (UUID).
//	Email        – unique, normalized to lower case.
//	FullName     – display name.
//	Phone        – contact number shown to the counterparty.
//	Role         – CLIENT or OPERATOR.
//	PasswordHash – bcrypt hash of the password.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the ephemeral result of a successful sign-in.  It lives for the
// duration of the access token; only the SHA-256 hash of the refresh token
// is kept server-side (in Redis, with TTL), never the raw value.
type Session struct {
	User           User      `json:"user"`
	AccessToken    string    `json:"access_token"`
	AccessExpires  time.Time `json:"access_expires"`
	RefreshToken   string    `json:"refresh_token"`
	RefreshExpires time.Time `json:"refresh_expires"`
	Degraded       bool      `json:"degraded,omitempty"`
}
