// Package keycloak is a typed client for the slice of the Keycloak REST API
// this application consumes: the realm token endpoint (resource-owner
// password grant), the OIDC userinfo endpoint, and the admin endpoints for
// user creation, user lookup, and realm-role mapping.
package keycloak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// adminCLIClientID is the built-in client used for the admin password grant.
const adminCLIClientID = "admin-cli"

// ErrConflict is returned when Keycloak reports that a user with the same
// username or email already exists.
var ErrConflict = errors.New("keycloak: user already exists")

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("keycloak: not found")

// StatusError carries a non-2xx upstream status for callers that pass the
// status through, as the registration flow does for create-user failures.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("keycloak: unexpected status %d: %s", e.Status, e.Body)
}

// Config holds the connection settings for a Client.
type Config struct {
	BaseURL       string
	Realm         string
	ClientID      string // public realm client used for end-user logins
	AdminUser     string
	AdminPassword string
	Timeout       time.Duration
}

// Client talks to a single Keycloak installation and realm.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a Client. A zero Timeout defaults to 10 seconds, the
// same fixed timeout used for all other outbound calls.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured Keycloak base URL.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Realm returns the configured realm name.
func (c *Client) Realm() string { return c.cfg.Realm }

// JWKSURL returns the realm's JWKS endpoint, used by the JWT middleware.
func (c *Client) JWKSURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", c.cfg.BaseURL, c.cfg.Realm)
}

// Issuer returns the realm's token issuer URL.
func (c *Client) Issuer() string {
	return fmt.Sprintf("%s/realms/%s", c.cfg.BaseURL, c.cfg.Realm)
}

// ---------------------------------------------------------------------------
// Token endpoints
// ---------------------------------------------------------------------------

// AdminToken obtains an administrative access token via the resource-owner
// password grant against the master realm. Every orchestration request
// starts here; a failure aborts the whole flow.
func (c *Client) AdminToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("client_id", adminCLIClientID)
	form.Set("grant_type", "password")
	form.Set("username", c.cfg.AdminUser)
	form.Set("password", c.cfg.AdminPassword)

	tok, err := c.token(ctx, "master", form)
	if err != nil {
		return "", fmt.Errorf("admin token: %w", err)
	}
	return tok.AccessToken, nil
}

// Login performs the resource-owner password grant against the realm's
// public client on behalf of an end user.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)

	return c.token(ctx, c.cfg.Realm, form)
}

func (c *Client) token(ctx context.Context, realm string, form url.Values) (*TokenResponse, error) {
	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.cfg.BaseURL, realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	var tok TokenResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &tok); err != nil {
			return nil, fmt.Errorf("decode token response: %w", err)
		}
	}
	if resp.StatusCode != http.StatusOK {
		msg := tok.ErrorDescription
		if msg == "" {
			msg = tok.Error
		}
		if msg == "" {
			msg = string(body)
		}
		return &tok, &StatusError{Status: resp.StatusCode, Body: msg}
	}
	return &tok, nil
}

// UserInfo fetches the OIDC userinfo for an end-user access token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/userinfo", c.cfg.BaseURL, c.cfg.Realm)
	var info UserInfo
	if err := c.doJSON(ctx, http.MethodGet, endpoint, accessToken, nil, &info); err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	return &info, nil
}

// ---------------------------------------------------------------------------
// Admin user endpoints
// ---------------------------------------------------------------------------

func (c *Client) adminURL(format string, args ...any) string {
	return fmt.Sprintf("%s/admin/realms/%s", c.cfg.BaseURL, c.cfg.Realm) + fmt.Sprintf(format, args...)
}

// CreateUser creates a user in the realm. The create endpoint returns 201
// with no body; the generated ID must be discovered with a follow-up
// lookup. Returns ErrConflict on 409.
func (c *Client) CreateUser(ctx context.Context, adminToken string, u *UserRepresentation) error {
	err := c.doJSON(ctx, http.MethodPost, c.adminURL("/users"), adminToken, u, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusConflict {
		return ErrConflict
	}
	return err
}

// FindUserByUsername looks up a user by exact username. Returns ErrNotFound
// when the realm has no such user.
func (c *Client) FindUserByUsername(ctx context.Context, adminToken, username string) (*User, error) {
	endpoint := c.adminURL("/users?username=%s&exact=true", url.QueryEscape(username))
	var users []User
	if err := c.doJSON(ctx, http.MethodGet, endpoint, adminToken, nil, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

// ListUsers returns up to max users of the realm.
func (c *Client) ListUsers(ctx context.Context, adminToken string, max int) ([]User, error) {
	endpoint := c.adminURL("/users?max=%d", max)
	var users []User
	if err := c.doJSON(ctx, http.MethodGet, endpoint, adminToken, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ---------------------------------------------------------------------------
// Admin role endpoints
// ---------------------------------------------------------------------------

// GetRealmRole resolves a realm role by name. The role must pre-exist;
// this client never creates roles outside of realm bootstrap.
func (c *Client) GetRealmRole(ctx context.Context, adminToken, name string) (*Role, error) {
	endpoint := c.adminURL("/roles/%s", url.PathEscape(name))
	var role Role
	err := c.doJSON(ctx, http.MethodGet, endpoint, adminToken, nil, &role)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// AssignRealmRoles adds realm-role mappings to a user.
func (c *Client) AssignRealmRoles(ctx context.Context, adminToken, userID string, roles []Role) error {
	endpoint := c.adminURL("/users/%s/role-mappings/realm", url.PathEscape(userID))
	return c.doJSON(ctx, http.MethodPost, endpoint, adminToken, roles, nil)
}

// ListRealmRoleMappings returns the realm roles currently mapped to a user.
func (c *Client) ListRealmRoleMappings(ctx context.Context, adminToken, userID string) ([]Role, error) {
	endpoint := c.adminURL("/users/%s/role-mappings/realm", url.PathEscape(userID))
	var roles []Role
	if err := c.doJSON(ctx, http.MethodGet, endpoint, adminToken, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// RemoveRealmRoles removes realm-role mappings from a user.
func (c *Client) RemoveRealmRoles(ctx context.Context, adminToken, userID string, roles []Role) error {
	endpoint := c.adminURL("/users/%s/role-mappings/realm", url.PathEscape(userID))
	return c.doJSON(ctx, http.MethodDelete, endpoint, adminToken, roles, nil)
}

// ---------------------------------------------------------------------------
// Plumbing
// ---------------------------------------------------------------------------

// doJSON performs a bearer-authenticated JSON request. A nil in skips the
// request body; a nil out discards the response body. Non-2xx statuses are
// returned as *StatusError.
func (c *Client) doJSON(ctx context.Context, method, endpoint, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
