// Package crm is the HTTP collaborator for the external CRM upsert API.
//
// The sync core treats the CRM as an opaque endpoint: POST a JSON document
// or array of documents with a bearer token, receive a status and optional
// body. This package owns credential acquisition, the per-request timeout,
// and response verification, and reports failures through the taxonomy in
// errors.go so the delivery pipeline can retry uniformly.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds each individual CRM call. A timeout is a
// transport failure eligible for retry like any other.
const DefaultRequestTimeout = 30 * time.Second

// Response is the verified result of a successful delivery call.
type Response struct {
	Status int
	Body   []byte
}

// Config carries the connection settings for the CRM boundary.
type Config struct {
	AuthURL        string
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration
	TokenSkew      time.Duration
}

// Client posts upsert payloads to the CRM instance named by the current
// token. Safe for concurrent use.
type Client struct {
	tokens *TokenSource
	client *http.Client
}

// NewClient builds a client from config. A zero request timeout falls back
// to DefaultRequestTimeout.
func NewClient(cfg Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	hc := &http.Client{Timeout: timeout}
	return &Client{
		tokens: NewTokenSource(cfg.AuthURL, cfg.ClientID, cfg.ClientSecret, cfg.TokenSkew, hc),
		client: hc,
	}
}

// NewClientWithTokenSource wires an explicit token source, used by tests
// and by deployments that front the auth endpoint differently.
func NewClientWithTokenSource(ts *TokenSource, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &Client{tokens: ts, client: client}
}

// Upsert posts payload as JSON to path on the CRM instance and verifies
// the response. It returns a *StatusError for non-2xx replies and an
// *EnvelopeError for 2xx replies whose body signals failure; both are
// retryable by the caller. Credential failures are ErrAuth-wrapped.
func (c *Client) Upsert(ctx context.Context, path string, payload any) (*Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, token.InstanceURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token was revoked ahead of its window; drop it so the next
		// attempt re-authenticates.
		c.tokens.Invalidate()
	}

	if err := VerifyResponse(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return &Response{Status: resp.StatusCode, Body: respBody}, nil
}
