// Package gateway is the HTTP client for the hospital services gateway. All
// resource proxies go through it: it injects the caller's bearer token,
// applies the fixed outbound timeout, and normalizes upstream statuses into
// sentinel errors the handlers can branch on.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnauthorized is returned on an upstream 401. The caller's session is
// considered dead; handlers answer with a redirect to the login page.
var ErrUnauthorized = errors.New("gateway: unauthorized")

// ErrForbidden is returned on an upstream 403.
var ErrForbidden = errors.New("gateway: forbidden")

// ErrNotFound is returned on an upstream 404.
var ErrNotFound = errors.New("gateway: not found")

// UpstreamError carries any other non-2xx upstream status.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gateway: upstream status %d: %s", e.Status, e.Body)
}

// Client performs JSON requests against a single upstream base URL. There
// are no retries; a request either lands within the timeout or fails.
type Client struct {
	baseURL string
	http    *http.Client

	// onUnauthorized is invoked with the rejected token whenever the
	// upstream answers 401, so the session layer can drop the dead session
	// before the error reaches the handler.
	onUnauthorized func(token string)
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default 10 second request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUnauthorizedHook registers a callback fired on every upstream 401.
func WithUnauthorizedHook(fn func(token string)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// GetJSON performs a GET and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, token, path string, out any) error {
	return c.do(ctx, http.MethodGet, token, path, nil, out)
}

// PostJSON performs a POST with a JSON body and decodes the response into
// out. A nil out discards the response body.
func (c *Client) PostJSON(ctx context.Context, token, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, token, path, in, out)
}

// PutJSON performs a PUT with a JSON body and decodes the response into out.
func (c *Client) PutJSON(ctx context.Context, token, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, token, path, in, out)
}

// PatchJSON performs a PATCH with a JSON body and decodes the response into out.
func (c *Client) PatchJSON(ctx context.Context, token, path string, in, out any) error {
	return c.do(ctx, http.MethodPatch, token, path, in, out)
}

// Delete performs a DELETE and discards any response body.
func (c *Client) Delete(ctx context.Context, token, path string) error {
	return c.do(ctx, http.MethodDelete, token, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, token, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized(token)
		}
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
