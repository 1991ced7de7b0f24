package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"guardline/internal/config"
)

func newTestContext(method, path string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c
}

func TestRateKey(t *testing.T) {
	c := newTestContext(http.MethodPost, "/v1/auth/signin")

	key := rateKey("rl", c)
	if !strings.HasPrefix(key, "rl:ip:") {
		t.Fatalf("key %q missing ip dimension", key)
	}
	if !strings.HasSuffix(key, ":route:POST /v1/auth/signin") {
		t.Fatalf("key %q missing route dimension", key)
	}

	// The limiter runs ahead of the JWT middleware, so the key must not
	// depend on the authenticated identity: the same caller keeps the
	// same bucket whether or not identity was set.
	c.Set("user_id", "user-1")
	if got := rateKey("rl", c); got != key {
		t.Fatalf("key changed after identity set: %q vs %q", got, key)
	}
}

func TestTokenBucketPassThrough(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.RateLimitConfig
	}{
		{"disabled", config.RateLimitConfig{Enabled: false}},
		{"no redis", config.RateLimitConfig{Enabled: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := NewTokenBucket(tc.cfg, nil)
			called := false
			h := mw(func(c echo.Context) error {
				called = true
				return nil
			})
			if err := h(newTestContext(http.MethodGet, "/v1/bookings")); err != nil {
				t.Fatalf("handler: %v", err)
			}
			if !called {
				t.Fatal("pass-through middleware did not call the handler")
			}
		})
	}
}
