package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func tokenServer(t *testing.T, fetches *int64, expiresIn int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(fetches, 1)

		if r.Method != http.MethodPost {
			t.Errorf("token request method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"instance_url": "https://crm.example.com/",
			"expires_in":   expiresIn,
		})
	}))
}

func TestTokenSource_FetchAndCache(t *testing.T) {
	var fetches int64
	srv := tokenServer(t, &fetches, 3600)
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "id", "secret", time.Second, srv.Client())

	tok, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != "tok-123" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}
	// Trailing slash is normalized so path joining stays simple.
	if tok.InstanceURL != "https://crm.example.com" {
		t.Errorf("InstanceURL = %q", tok.InstanceURL)
	}

	// Second call inside the validity window reuses the cache.
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got := atomic.LoadInt64(&fetches); got != 1 {
		t.Errorf("auth endpoint fetched %d times, want 1", got)
	}
}

func TestTokenSource_RefreshesExpiredToken(t *testing.T) {
	var fetches int64
	// expires_in of 0 makes every cached token immediately stale.
	srv := tokenServer(t, &fetches, 0)
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "id", "secret", time.Second, srv.Client())

	for i := 0; i < 3; i++ {
		if _, err := ts.Token(context.Background()); err != nil {
			t.Fatalf("Token() error = %v", err)
		}
	}
	if got := atomic.LoadInt64(&fetches); got != 3 {
		t.Errorf("auth endpoint fetched %d times, want 3 for an always-stale token", got)
	}
}

func TestTokenSource_Invalidate(t *testing.T) {
	var fetches int64
	srv := tokenServer(t, &fetches, 3600)
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "id", "secret", time.Second, srv.Client())

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	ts.Invalidate()
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	if got := atomic.LoadInt64(&fetches); got != 2 {
		t.Errorf("auth endpoint fetched %d times, want 2 after Invalidate", got)
	}
}

func TestTokenSource_AuthFailureIsErrAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "id", "wrong", time.Second, srv.Client())

	_, err := ts.Token(context.Background())
	if !errors.Is(err, ErrAuth) {
		t.Errorf("error = %v, want ErrAuth in chain", err)
	}
}

func TestTokenSource_RejectsIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"expires_in": 3600})
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "id", "secret", time.Second, srv.Client())

	if _, err := ts.Token(context.Background()); !errors.Is(err, ErrAuth) {
		t.Errorf("error = %v, want ErrAuth for missing token fields", err)
	}
}
