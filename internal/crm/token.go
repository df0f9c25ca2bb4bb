package crm

// token.go acquires and caches the CRM credential.
//
// The token is process-wide shared state: computed lazily on first need,
// reused until its validity window (minus a safety skew) expires, then
// recomputed. Concurrent callers may race to refresh; fetching twice is
// harmless, so the lock only guards the cache, not the network call
// ordering.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTokenSkew is subtracted from the reported validity window so a
// token is refreshed before it expires mid-request.
const DefaultTokenSkew = 60 * time.Second

// Token is an opaque CRM credential valid until ExpiresAt, scoped to the
// instance it names.
type Token struct {
	AccessToken string
	InstanceURL string
	ExpiresAt   time.Time
}

// valid reports whether the token is still usable given the skew.
func (t *Token) valid(skew time.Duration) bool {
	return t != nil && time.Now().Add(skew).Before(t.ExpiresAt)
}

// tokenResponse is the wire shape of the auth endpoint reply.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenSource fetches and caches credentials from the CRM auth endpoint.
type TokenSource struct {
	authURL      string
	clientID     string
	clientSecret string
	skew         time.Duration
	client       *http.Client

	mu     sync.Mutex
	cached *Token
}

// NewTokenSource creates a source for the given auth endpoint. A zero skew
// falls back to DefaultTokenSkew.
func NewTokenSource(authURL, clientID, clientSecret string, skew time.Duration, client *http.Client) *TokenSource {
	if skew <= 0 {
		skew = DefaultTokenSkew
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenSource{
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		skew:         skew,
		client:       client,
	}
}

// Token returns a valid credential, fetching a fresh one when the cache is
// empty or expired. All failures are wrapped in ErrAuth.
func (ts *TokenSource) Token(ctx context.Context) (*Token, error) {
	ts.mu.Lock()
	cached := ts.cached
	ts.mu.Unlock()
	if cached.valid(ts.skew) {
		return cached, nil
	}

	fresh, err := ts.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	ts.mu.Lock()
	ts.cached = fresh
	ts.mu.Unlock()
	return fresh, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	ts.cached = nil
	ts.mu.Unlock()
}

func (ts *TokenSource) fetch(ctx context.Context) (*Token, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {ts.clientID},
		"client_secret": {ts.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: truncate(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" || tr.InstanceURL == "" {
		return nil, fmt.Errorf("token response missing access_token or instance_url")
	}

	return &Token{
		AccessToken: tr.AccessToken,
		InstanceURL: strings.TrimRight(tr.InstanceURL, "/"),
		ExpiresAt:   time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
