package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// Roles is the fixed application role catalog. Registration always assigns
// RolePatient; the others are granted by an administrator afterwards.
const (
	RolePatient         = "PATIENT"
	RoleMedecin         = "MEDECIN"
	RoleManager         = "MANAGER"
	RoleSecurityOfficer = "SECURITY_OFFICER"
	RoleAdmin           = "ADMIN"
)

// ManagedRoles lists every application role, in the order they are created
// during bootstrap.
var ManagedRoles = []string{RolePatient, RoleMedecin, RoleManager, RoleSecurityOfficer, RoleAdmin}

// IsManagedRole reports whether name is one of the application roles.
func IsManagedRole(name string) bool {
	for _, r := range ManagedRoles {
		if r == name {
			return true
		}
	}
	return false
}

// realmRepresentation is the subset of the realm payload bootstrap sets.
type realmRepresentation struct {
	Realm               string `json:"realm"`
	Enabled             bool   `json:"enabled"`
	RegistrationAllowed bool   `json:"registrationAllowed"`
	VerifyEmail         bool   `json:"verifyEmail"`
}

// clientRepresentation is the subset of the client payload bootstrap sets.
// The client is public with direct access grants so the login route can use
// the resource-owner password flow.
type clientRepresentation struct {
	ID                       string   `json:"id,omitempty"`
	ClientID                 string   `json:"clientId"`
	Enabled                  bool     `json:"enabled"`
	PublicClient             bool     `json:"publicClient"`
	DirectAccessGrantsEnabled bool    `json:"directAccessGrantsEnabled"`
	StandardFlowEnabled      bool     `json:"standardFlowEnabled"`
	ImplicitFlowEnabled      bool     `json:"implicitFlowEnabled"`
	RedirectURIs             []string `json:"redirectUris"`
	WebOrigins               []string `json:"webOrigins"`
}

// BootstrapResult reports what Bootstrap created versus found in place.
type BootstrapResult struct {
	RealmCreated  bool
	ClientCreated bool
	RolesCreated  []string
}

// Bootstrap provisions the realm, the public client, and the role catalog,
// creating only what does not already exist. It is idempotent and safe to
// run on every deploy.
func (c *Client) Bootstrap(ctx context.Context, logger zerolog.Logger) (*BootstrapResult, error) {
	token, err := c.AdminToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	res := &BootstrapResult{}

	created, err := c.ensureRealm(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("bootstrap realm: %w", err)
	}
	res.RealmCreated = created
	if created {
		logger.Info().Str("realm", c.cfg.Realm).Msg("realm created")
	}

	created, err = c.ensureClient(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("bootstrap client: %w", err)
	}
	res.ClientCreated = created
	if created {
		logger.Info().Str("client_id", c.cfg.ClientID).Msg("client created")
	}

	for _, name := range ManagedRoles {
		created, err := c.ensureRole(ctx, token, name)
		if err != nil {
			return nil, fmt.Errorf("bootstrap role %s: %w", name, err)
		}
		if created {
			res.RolesCreated = append(res.RolesCreated, name)
			logger.Info().Str("role", name).Msg("role created")
		}
	}

	return res, nil
}

func (c *Client) ensureRealm(ctx context.Context, token string) (bool, error) {
	checkURL := fmt.Sprintf("%s/admin/realms/%s", c.cfg.BaseURL, c.cfg.Realm)
	err := c.doJSON(ctx, http.MethodGet, checkURL, token, nil, &map[string]any{})
	if err == nil {
		return false, nil
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound {
		return false, err
	}

	payload := realmRepresentation{
		Realm:               c.cfg.Realm,
		Enabled:             true,
		RegistrationAllowed: true,
		VerifyEmail:         false,
	}
	createURL := fmt.Sprintf("%s/admin/realms", c.cfg.BaseURL)
	if err := c.doJSON(ctx, http.MethodPost, createURL, token, payload, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) ensureClient(ctx context.Context, token string) (bool, error) {
	listURL := c.adminURL("/clients?clientId=%s", url.QueryEscape(c.cfg.ClientID))
	var clients []clientRepresentation
	if err := c.doJSON(ctx, http.MethodGet, listURL, token, nil, &clients); err != nil {
		return false, err
	}
	if len(clients) > 0 {
		return false, nil
	}

	payload := clientRepresentation{
		ClientID:                  c.cfg.ClientID,
		Enabled:                   true,
		PublicClient:              true,
		DirectAccessGrantsEnabled: true,
		StandardFlowEnabled:       true,
		ImplicitFlowEnabled:       false,
		RedirectURIs:              []string{"*"},
		WebOrigins:                []string{"*"},
	}
	if err := c.doJSON(ctx, http.MethodPost, c.adminURL("/clients"), token, payload, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) ensureRole(ctx context.Context, token, name string) (bool, error) {
	err := c.doJSON(ctx, http.MethodPost, c.adminURL("/roles"), token, Role{Name: name}, nil)
	if err == nil {
		return true, nil
	}
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusConflict {
		return false, nil
	}
	return false, err
}

// SeedUser creates a user with the given role if no user with that username
// exists yet. Used by `realm init` to provision the first administrator.
func (c *Client) SeedUser(ctx context.Context, username, email, password, role string) error {
	token, err := c.AdminToken(ctx)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	if _, err := c.FindUserByUsername(ctx, token, username); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("seed user lookup: %w", err)
	}

	rep := &UserRepresentation{
		Username:      username,
		Email:         email,
		Enabled:       true,
		EmailVerified: true,
		Credentials: []Credential{{
			Type:      "password",
			Value:     password,
			Temporary: false,
		}},
	}
	if err := c.CreateUser(ctx, token, rep); err != nil {
		return fmt.Errorf("seed user create: %w", err)
	}

	user, err := c.FindUserByUsername(ctx, token, username)
	if err != nil {
		return fmt.Errorf("seed user id lookup: %w", err)
	}
	r, err := c.GetRealmRole(ctx, token, role)
	if err != nil {
		return fmt.Errorf("seed user role lookup: %w", err)
	}
	if err := c.AssignRealmRoles(ctx, token, user.ID, []Role{*r}); err != nil {
		return fmt.Errorf("seed user role assign: %w", err)
	}
	return nil
}
