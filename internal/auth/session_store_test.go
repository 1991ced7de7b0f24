package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySessionStore_SaveLookupRevoke(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	if err := s.Save(ctx, "hash-1", "user-1", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	userID, err := s.Lookup(ctx, "hash-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("lookup = %s, want user-1", userID)
	}

	if err := s.Revoke(ctx, "hash-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.Lookup(ctx, "hash-1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("lookup after revoke: got %v, want ErrNoSession", err)
	}
	// revoking an unknown hash is a no-op
	if err := s.Revoke(ctx, "hash-1"); err != nil {
		t.Fatalf("double revoke: %v", err)
	}
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	if err := s.Save(ctx, "hash-ttl", "user-1", 10*time.Millisecond); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := s.Lookup(ctx, "hash-ttl"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired lookup: got %v, want ErrNoSession", err)
	}

	if err := s.Save(ctx, "hash-zero", "user-1", 0); !errors.Is(err, ErrNoSession) {
		t.Fatalf("zero ttl save: got %v, want ErrNoSession", err)
	}
}

func TestMemorySessionStore_UnknownToken(t *testing.T) {
	s := NewMemorySessionStore()
	if _, err := s.Lookup(context.Background(), "never-saved"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("unknown lookup: got %v, want ErrNoSession", err)
	}
}
