package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBookingCode(t *testing.T) {
	pattern := regexp.MustCompile(`^REQ[0-9]+$`)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := NewBookingCode()
		if !pattern.MatchString(code) {
			t.Fatalf("code %q does not match REQ<digits>", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %s after %d draws", code, i)
		}
		seen[code] = true
	}
}

func TestAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("secret", "user-9", "OPERATOR", 15)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "user-9" || claims["role"] != "OPERATOR" {
		t.Fatalf("claims = %v", claims)
	}
	if time.Until(at.Exp) > 16*time.Minute {
		t.Fatalf("expiry too far out: %s", at.Exp)
	}

	// wrong secret must not verify
	if _, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	}, jwt.WithValidMethods([]string{"HS256"})); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("new refresh token: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw token length = %d, want 96", len(rt.Raw))
	}
	h := HashRefreshRaw(rt.Raw)
	if h == rt.Raw || len(h) != 64 {
		t.Fatalf("hash %q is not a sha256 hex digest", h)
	}
	if HashRefreshRaw(rt.Raw) != h {
		t.Fatal("hash is not deterministic")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "correct horse") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "battery staple") {
		t.Fatal("wrong password accepted")
	}

	// an out-of-range cost is clamped, not an error
	if _, err := HashPassword("correct horse", 99); err != nil {
		t.Fatalf("clamped cost: %v", err)
	}
}

func TestParseRFC3339(t *testing.T) {
	ts, err := ParseRFC3339("2026-09-01T12:30:00+02:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ts.Location() != time.UTC {
		t.Fatalf("not normalized to UTC: %s", ts)
	}
	if ts.Hour() != 10 {
		t.Fatalf("hour = %d, want 10", ts.Hour())
	}
	if _, err := ParseRFC3339("next tuesday"); err == nil {
		t.Fatal("garbage timestamp accepted")
	}
}
