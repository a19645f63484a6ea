package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/medinsight/medinsight/internal/platform/keycloak"
)

// ErrRoleUnknown is returned when the requested role is not part of the
// application catalog or missing from the realm.
var ErrRoleUnknown = errors.New("users: unknown role")

// maxListed caps the admin user listing.
const maxListed = 200

// Service reads and mutates realm accounts through the admin API.
type Service struct {
	kc     *keycloak.Client
	logger zerolog.Logger
}

// NewService creates a Service.
func NewService(kc *keycloak.Client, logger zerolog.Logger) *Service {
	return &Service{kc: kc, logger: logger}
}

// List returns realm accounts with their resolved application role.
func (s *Service) List(ctx context.Context) ([]User, error) {
	token, err := s.kc.AdminToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	raw, err := s.kc.ListUsers(ctx, token, maxListed)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]User, 0, len(raw))
	for _, u := range raw {
		user := User{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Nom:      u.LastName,
			Prenom:   u.FirstName,
			Enabled:  u.Enabled,
		}
		mappings, err := s.kc.ListRealmRoleMappings(ctx, token, u.ID)
		if err != nil {
			// A user without a readable mapping still shows up in the list.
			s.logger.Warn().Err(err).Str("user_id", u.ID).Msg("role mapping lookup failed")
		}
		user.Role = managedRole(mappings)
		out = append(out, user)
	}
	return out, nil
}

// Get returns one account by its identity provider ID.
func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	token, err := s.kc.AdminToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	raw, err := s.kc.ListUsers(ctx, token, maxListed)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	for _, u := range raw {
		if u.ID != userID {
			continue
		}
		mappings, _ := s.kc.ListRealmRoleMappings(ctx, token, u.ID)
		return &User{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Nom:      u.LastName,
			Prenom:   u.FirstName,
			Enabled:  u.Enabled,
			Role:     managedRole(mappings),
		}, nil
	}
	return nil, keycloak.ErrNotFound
}

// ChangeRole removes every managed role the user currently holds, then
// assigns the new one. Built-in realm roles are never touched. Returns
// ErrRoleUnknown when the target role does not exist.
func (s *Service) ChangeRole(ctx context.Context, req *ChangeRoleRequest) error {
	if !keycloak.IsManagedRole(req.Role) {
		return ErrRoleUnknown
	}

	token, err := s.kc.AdminToken(ctx)
	if err != nil {
		return fmt.Errorf("change role: %w", err)
	}

	newRole, err := s.kc.GetRealmRole(ctx, token, req.Role)
	if err != nil {
		if errors.Is(err, keycloak.ErrNotFound) {
			return ErrRoleUnknown
		}
		return fmt.Errorf("change role: %w", err)
	}

	current, err := s.kc.ListRealmRoleMappings(ctx, token, req.UserID)
	if err != nil {
		return fmt.Errorf("change role: %w", err)
	}
	var toRemove []keycloak.Role
	for _, r := range current {
		if keycloak.IsManagedRole(r.Name) {
			toRemove = append(toRemove, r)
		}
	}
	if len(toRemove) > 0 {
		if err := s.kc.RemoveRealmRoles(ctx, token, req.UserID, toRemove); err != nil {
			return fmt.Errorf("change role: %w", err)
		}
	}

	if err := s.kc.AssignRealmRoles(ctx, token, req.UserID, []keycloak.Role{*newRole}); err != nil {
		return fmt.Errorf("change role: %w", err)
	}

	s.logger.Info().
		Str("user_id", req.UserID).
		Str("role", req.Role).
		Msg("role changed")
	return nil
}

func managedRole(roles []keycloak.Role) string {
	for _, r := range roles {
		if keycloak.IsManagedRole(r.Name) {
			return r.Name
		}
	}
	return ""
}
