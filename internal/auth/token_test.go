package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func grantServer(t *testing.T, calls *atomic.Int64, expiresIn float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			t.Errorf("expected basic auth id/secret, got %q/%q", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("expected grant_type=client_credentials, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"expires_in":   expiresIn,
		})
	}))
}

func TestTokenNotConfigured(t *testing.T) {
	ts := NewTokenSource(Options{}, noopLogger())

	token, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("unconfigured source must not error: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
}

func TestTokenReuseWithinValidity(t *testing.T) {
	var calls atomic.Int64
	srv := grantServer(t, &calls, 3600)
	defer srv.Close()

	ts := NewTokenSource(Options{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, noopLogger())

	for i := 0; i < 2; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("token call %d failed: %v", i, err)
		}
		if token != "tok-1" {
			t.Fatalf("unexpected token %q", token)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one exchange, got %d", got)
	}
}

func TestTokenRefreshBeforeExpiry(t *testing.T) {
	var calls atomic.Int64
	srv := grantServer(t, &calls, 3600)
	defer srv.Close()

	ts := NewTokenSource(Options{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, noopLogger())

	now := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return now }

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("initial exchange failed: %v", err)
	}

	// 30 seconds before nominal expiry: inside the skew window, must refresh.
	now = now.Add(3600*time.Second - 30*time.Second)
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("refresh exchange failed: %v", err)
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected a refresh exchange, got %d calls", got)
	}

	wantExpiry := now.Add(3600 * time.Second)
	if !ts.expires.Equal(wantExpiry) {
		t.Fatalf("expected stored expiry %s, got %s", wantExpiry, ts.expires)
	}
}

func TestTokenRejectedGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ts := NewTokenSource(Options{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, noopLogger())

	if _, err := ts.Token(context.Background()); err == nil {
		t.Fatal("rejected grant must propagate an error")
	}
}
