package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"guardline/internal/model"
	"guardline/internal/store"
	"guardline/internal/utils"
)

// CredentialSource supplies the stored password hash for an email.  The
// primary store and the fallback store both satisfy it; the verification
// logic itself is shared, so the two paths cannot diverge.
type CredentialSource interface {
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

// SessionStore keeps refresh-token hashes for the lifetime of a session.
// Implementations live in internal/auth (Redis-backed, with an in-memory
// stand-in when Redis is absent).
type SessionStore interface {
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, tokenHash string) (string, error)
	Revoke(ctx context.Context, tokenHash string) error
}

// AuthGateway verifies credentials against the authoritative identity
// provider and falls back to local verification only when that provider is
// unreachable.  A rejected credential fails on whichever path ran; there is
// no second chance for a wrong password.
type AuthGateway struct {
	Primary  CredentialSource
	Fallback CredentialSource
	Users    store.Store // user reads/writes through the failover policy
	Sessions SessionStore

	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
	Timeout        time.Duration
}

func (g *AuthGateway) timeout() time.Duration {
	if g.Timeout <= 0 {
		return store.DefaultPrimaryTimeout
	}
	return g.Timeout
}

// SignIn verifies email/password and returns a fresh session.  The primary
// identity provider is always attempted first under a bounded timeout; only
// a transport-classified failure moves verification to the fallback source.
func (g *AuthGateway) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.Session{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	pctx, cancel := context.WithTimeout(ctx, g.timeout())
	u, err := g.Primary.GetUserByEmail(pctx, email)
	cancel()
	switch {
	case err == nil:
		return g.establish(ctx, u, password, false)
	case errors.Is(err, store.ErrNotFound):
		// The provider answered: the account does not exist.  That is a
		// rejected credential, not an outage.
		return model.Session{}, ErrInvalidCredentials
	case store.IsTransport(err):
		log.Printf("auth: identity provider unreachable, verifying locally: %v", err)
		fu, fbErr := g.Fallback.GetUserByEmail(ctx, email)
		if fbErr != nil {
			if errors.Is(fbErr, store.ErrNotFound) {
				return model.Session{}, ErrInvalidCredentials
			}
			return model.Session{}, fmt.Errorf("%w: sign in: primary: %v; fallback: %v", store.ErrUnavailable, err, fbErr)
		}
		return g.establish(ctx, fu, password, true)
	default:
		return model.Session{}, fmt.Errorf("auth: sign in: %w", err)
	}
}

// establish is the single credential check used by both paths.  The only
// thing that varies between primary and fallback is which source supplied
// the stored hash; the bcrypt comparison is identical, so the degraded path
// can never turn into a bypass.
func (g *AuthGateway) establish(ctx context.Context, u model.User, password string, degraded bool) (model.Session, error) {
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.Session{}, ErrInvalidCredentials
	}
	access, err := utils.NewAccessToken(g.JWTSecret, u.ID, u.Role, g.AccessTTLMin)
	if err != nil {
		return model.Session{}, fmt.Errorf("auth: issue access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(g.RefreshTTLDays)
	if err != nil {
		return model.Session{}, fmt.Errorf("auth: issue refresh token: %w", err)
	}
	if g.Sessions != nil {
		ttl := time.Until(refresh.Exp)
		if err := g.Sessions.Save(ctx, utils.HashRefreshRaw(refresh.Raw), u.ID, ttl); err != nil {
			// The session store is ephemeral convenience; its outage must
			// not block a verified sign-in.  The refresh token simply
			// won't be redeemable.
			log.Printf("auth: save refresh session: %v", err)
		}
	}
	u.PasswordHash = ""
	return model.Session{
		User:           u,
		AccessToken:    access.Token,
		AccessExpires:  access.Exp,
		RefreshToken:   refresh.Raw,
		RefreshExpires: refresh.Exp,
		Degraded:       degraded,
	}, nil
}

// RegisterRequest carries a new account's fields.
type RegisterRequest struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Role     string
}

// Register creates an account and returns the stored profile.  The password
// is bcrypt-hashed before it reaches any store.
func (g *AuthGateway) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(req.Password) < 8 {
		return model.User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return model.User{}, fmt.Errorf("%w: full_name is required", ErrValidation)
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleClient
	}
	if role != model.RoleClient && role != model.RoleOperator {
		return model.User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}
	hash, err := utils.HashPassword(req.Password, g.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("auth: hash password: %w", err)
	}
	u, err := g.Users.CreateUser(ctx, model.User{
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.  The
// refresh token is not rotated.
func (g *AuthGateway) Refresh(ctx context.Context, refreshRaw string) (model.Session, error) {
	refreshRaw = strings.TrimSpace(refreshRaw)
	if refreshRaw == "" {
		return model.Session{}, fmt.Errorf("%w: refresh_token is required", ErrValidation)
	}
	if g.Sessions == nil {
		return model.Session{}, ErrSessionExpired
	}
	userID, err := g.Sessions.Lookup(ctx, utils.HashRefreshRaw(refreshRaw))
	if err != nil {
		return model.Session{}, ErrSessionExpired
	}
	u, err := g.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Session{}, ErrSessionExpired
		}
		return model.Session{}, fmt.Errorf("auth: load user: %w", err)
	}
	access, err := utils.NewAccessToken(g.JWTSecret, u.ID, u.Role, g.AccessTTLMin)
	if err != nil {
		return model.Session{}, fmt.Errorf("auth: issue access token: %w", err)
	}
	u.PasswordHash = ""
	return model.Session{User: u, AccessToken: access.Token, AccessExpires: access.Exp}, nil
}

// Logout revokes a single refresh token.  Unknown tokens are reported as
// expired sessions rather than silently accepted.
func (g *AuthGateway) Logout(ctx context.Context, refreshRaw string) error {
	refreshRaw = strings.TrimSpace(refreshRaw)
	if refreshRaw == "" {
		return fmt.Errorf("%w: refresh_token is required", ErrValidation)
	}
	if g.Sessions == nil {
		return ErrSessionExpired
	}
	hash := utils.HashRefreshRaw(refreshRaw)
	if _, err := g.Sessions.Lookup(ctx, hash); err != nil {
		return ErrSessionExpired
	}
	return g.Sessions.Revoke(ctx, hash)
}
