package service

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"guardline/internal/auth"
	"guardline/internal/model"
	"guardline/internal/store"
)

// unreachableSource simulates the identity provider being down.
type unreachableSource struct{}

func (unreachableSource) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return model.User{}, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
}

// countingSource wraps a CredentialSource and records how often it is
// consulted.
type countingSource struct {
	inner CredentialSource
	calls int
}

func (c *countingSource) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	c.calls++
	return c.inner.GetUserByEmail(ctx, email)
}

func newGateway(primary CredentialSource, users store.Store) *AuthGateway {
	return &AuthGateway{
		Primary:        primary,
		Fallback:       store.NewFallbackStore(),
		Users:          users,
		Sessions:       auth.NewMemorySessionStore(),
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
		Timeout:        time.Second,
	}
}

func TestAuth_RegisterAndSignIn(t *testing.T) {
	st := store.NewFallbackStore()
	g := newGateway(st, st)
	ctx := context.Background()

	u, err := g.Register(ctx, RegisterRequest{
		Email:    "Ada@Example.COM",
		Password: "hunter2hunter2",
		FullName: "Ada Client",
		Phone:    "+15550002222",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %s", u.Email)
	}
	if u.Role != model.RoleClient {
		t.Fatalf("default role = %s", u.Role)
	}
	if u.PasswordHash != "" {
		t.Fatal("password hash leaked in register response")
	}

	sess, err := g.SignIn(ctx, "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.Degraded {
		t.Fatal("primary-path sign-in marked degraded")
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatal("session tokens missing")
	}
	if sess.User.ID != u.ID {
		t.Fatalf("session user = %s, want %s", sess.User.ID, u.ID)
	}
}

func TestAuth_RegisterValidation(t *testing.T) {
	st := store.NewFallbackStore()
	g := newGateway(st, st)
	ctx := context.Background()

	cases := []RegisterRequest{
		{Email: "no-at-sign", Password: "hunter2hunter2", FullName: "X"},
		{Email: "a@b.c", Password: "short", FullName: "X"},
		{Email: "a@b.c", Password: "hunter2hunter2", FullName: "  "},
		{Email: "a@b.c", Password: "hunter2hunter2", FullName: "X", Role: "ADMIN"},
	}
	for _, req := range cases {
		if _, err := g.Register(ctx, req); !errors.Is(err, ErrValidation) {
			t.Fatalf("register %+v: got %v, want ErrValidation", req, err)
		}
	}
}

func TestAuth_DuplicateEmail(t *testing.T) {
	st := store.NewFallbackStore()
	g := newGateway(st, st)
	ctx := context.Background()

	req := RegisterRequest{Email: "dup@example.com", Password: "hunter2hunter2", FullName: "Dup"}
	if _, err := g.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := g.Register(ctx, req); !errors.Is(err, store.ErrEmailExists) {
		t.Fatalf("second register: got %v, want ErrEmailExists", err)
	}
}

func TestAuth_PrimaryAnswersFallbackNeverConsulted(t *testing.T) {
	st := store.NewFallbackStore()
	g := newGateway(st, st)
	counted := &countingSource{inner: g.Fallback}
	g.Fallback = counted
	ctx := context.Background()

	if _, err := g.Register(ctx, RegisterRequest{Email: "bea@example.com", Password: "hunter2hunter2", FullName: "Bea"}); err != nil {
		t.Fatal(err)
	}

	// Wrong password with a reachable provider is a rejection on the spot.
	if _, err := g.SignIn(ctx, "bea@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	// Unknown account likewise.
	if _, err := g.SignIn(ctx, "ghost@example.com", "whatever123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown account: got %v, want ErrInvalidCredentials", err)
	}
	if counted.calls != 0 {
		t.Fatalf("fallback consulted %d times while the provider was reachable", counted.calls)
	}
}

func TestAuth_FallbackPathKeepsCredentialCheck(t *testing.T) {
	st := store.NewFallbackStore()
	g := newGateway(unreachableSource{}, st)
	ctx := context.Background()

	// Correct demo credentials verify locally and the session says so.
	sess, err := g.SignIn(ctx, store.DemoClientEmail, store.DemoPassword)
	if err != nil {
		t.Fatalf("fallback sign-in: %v", err)
	}
	if !sess.Degraded {
		t.Fatal("fallback sign-in must be marked degraded")
	}
	if sess.User.Role != model.RoleClient {
		t.Fatalf("demo client role = %s", sess.User.Role)
	}

	// A wrong password is rejected identically on the degraded path.
	if _, err := g.SignIn(ctx, store.DemoClientEmail, "not-the-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password on fallback: got %v, want ErrInvalidCredentials", err)
	}
	// So is an account neither source knows.
	if _, err := g.SignIn(ctx, "ghost@example.com", "whatever123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown account on fallback: got %v, want ErrInvalidCredentials", err)
	}
}

func TestAuth_BothSourcesDown(t *testing.T) {
	g := newGateway(unreachableSource{}, store.NewFallbackStore())
	g.Fallback = unreachableSource{}

	_, err := g.SignIn(context.Background(), "any@example.com", "whatever123")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("both sources down: got %v, want ErrUnavailable", err)
	}
}

func TestAuth_RefreshAndLogout(t *testing.T) {
	st := store.NewFallbackStore()
	g := newGateway(st, st)
	ctx := context.Background()

	if _, err := g.Register(ctx, RegisterRequest{Email: "cam@example.com", Password: "hunter2hunter2", FullName: "Cam"}); err != nil {
		t.Fatal(err)
	}
	sess, err := g.SignIn(ctx, "cam@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	refreshed, err := g.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatal("refresh returned no access token")
	}
	if refreshed.User.Email != "cam@example.com" {
		t.Fatalf("refresh user = %s", refreshed.User.Email)
	}

	if err := g.Logout(ctx, sess.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := g.Refresh(ctx, sess.RefreshToken); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("refresh after logout: got %v, want ErrSessionExpired", err)
	}
	if err := g.Logout(ctx, sess.RefreshToken); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("double logout: got %v, want ErrSessionExpired", err)
	}
	if _, err := g.Refresh(ctx, "bogus-token"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("bogus refresh: got %v, want ErrSessionExpired", err)
	}
}
