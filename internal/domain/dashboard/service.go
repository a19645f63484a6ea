// Package dashboard aggregates the collections each role's home screen
// shows into one response, fetched in parallel.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/medinsight/medinsight/internal/platform/gateway"
	"github.com/medinsight/medinsight/internal/platform/keycloak"
	"github.com/medinsight/medinsight/internal/platform/session"
)

// Section names as they appear in the aggregate response.
const (
	SectionAppointments  = "appointments"
	SectionPatients      = "patients"
	SectionMedecins      = "medecins"
	SectionNotifications = "notifications"
	SectionAuditLogs     = "auditLogs"
)

// Dashboard maps section names to raw upstream collections. A section that
// failed to load is present as an empty list; sections a role does not see
// are absent.
type Dashboard map[string][]json.RawMessage

// Service assembles dashboards from the upstream collections.
type Service struct {
	gw     *gateway.Client
	logger zerolog.Logger
}

func NewService(gw *gateway.Client, logger zerolog.Logger) *Service {
	return &Service{gw: gw, logger: logger}
}

// sectionsFor maps a session to the upstream paths its dashboard needs.
func sectionsFor(user session.User) map[string]string {
	switch user.Role {
	case keycloak.RoleMedecin:
		return map[string]string{
			SectionAppointments:  fmt.Sprintf("/api/appointments/medecin/%d", user.ID),
			SectionPatients:      "/api/patients",
			SectionNotifications: fmt.Sprintf("/api/notifications/user/%d", user.ID),
		}
	case keycloak.RoleManager, keycloak.RoleAdmin:
		return map[string]string{
			SectionPatients:     "/api/patients",
			SectionMedecins:     "/api/medecins",
			SectionAppointments: "/api/appointments",
		}
	case keycloak.RoleSecurityOfficer:
		return map[string]string{
			SectionAuditLogs:     "/api/audit",
			SectionNotifications: fmt.Sprintf("/api/notifications/user/%d", user.ID),
		}
	default:
		return map[string]string{
			SectionAppointments:  fmt.Sprintf("/api/appointments/patient/%d", user.ID),
			SectionNotifications: fmt.Sprintf("/api/notifications/user/%d", user.ID),
		}
	}
}

// Build fetches every section of the caller's dashboard in parallel. A
// failed section comes back empty while the rest render; only a revoked
// token aborts the whole aggregate.
func (s *Service) Build(ctx context.Context, token string, user session.User) (Dashboard, error) {
	paths := sectionsFor(user)
	results := make([][]json.RawMessage, len(paths))
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			var items []json.RawMessage
			if err := s.gw.GetJSON(gctx, token, paths[name], &items); err != nil {
				// A revoked token fails every section the same way; abort
				// instead of rendering an all-empty dashboard.
				if errors.Is(err, gateway.ErrUnauthorized) {
					return err
				}
				s.logger.Warn().
					Err(err).
					Str("section", name).
					Str("role", user.Role).
					Msg("dashboard section failed")
				items = nil
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dash := make(Dashboard, len(names))
	for i, name := range names {
		items := results[i]
		if items == nil {
			items = []json.RawMessage{}
		}
		dash[name] = items
	}
	return dash, nil
}
