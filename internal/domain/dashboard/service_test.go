package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medinsight/medinsight/internal/platform/gateway"
	"github.com/medinsight/medinsight/internal/platform/keycloak"
	"github.com/medinsight/medinsight/internal/platform/session"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(gateway.NewClient(srv.URL), zerolog.Nop())
}

func listOf(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"id": i + 1}
	}
	return out
}

func TestBuildMedecinSections(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/appointments/medecin/7":
			json.NewEncoder(w).Encode(listOf(2))
		case "/api/patients":
			json.NewEncoder(w).Encode(listOf(3))
		case "/api/notifications/user/7":
			json.NewEncoder(w).Encode(listOf(1))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	dash, err := svc.Build(context.Background(), "tok", session.User{ID: 7, Role: keycloak.RoleMedecin})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(dash) != 3 {
		t.Fatalf("sections = %d, want 3", len(dash))
	}
	if len(dash[SectionAppointments]) != 2 || len(dash[SectionPatients]) != 3 || len(dash[SectionNotifications]) != 1 {
		t.Errorf("section sizes = %d/%d/%d", len(dash[SectionAppointments]), len(dash[SectionPatients]), len(dash[SectionNotifications]))
	}
}

func TestBuildFailedSectionDegradesToEmpty(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/patients" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(listOf(2))
	})

	dash, err := svc.Build(context.Background(), "tok", session.User{ID: 7, Role: keycloak.RoleMedecin})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := dash[SectionPatients]; got == nil || len(got) != 0 {
		t.Errorf("failed section = %v, want present and empty", got)
	}
	if len(dash[SectionAppointments]) != 2 {
		t.Errorf("healthy section lost: %d items", len(dash[SectionAppointments]))
	}
}

func TestBuildUnauthorizedAborts(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := svc.Build(context.Background(), "dead", session.User{ID: 1, Role: keycloak.RolePatient})
	if !errors.Is(err, gateway.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestSectionsPerRole(t *testing.T) {
	cases := []struct {
		role string
		want []string
	}{
		{keycloak.RolePatient, []string{SectionAppointments, SectionNotifications}},
		{keycloak.RoleMedecin, []string{SectionAppointments, SectionPatients, SectionNotifications}},
		{keycloak.RoleManager, []string{SectionPatients, SectionMedecins, SectionAppointments}},
		{keycloak.RoleSecurityOfficer, []string{SectionAuditLogs, SectionNotifications}},
		{keycloak.RoleAdmin, []string{SectionPatients, SectionMedecins, SectionAppointments}},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			got := sectionsFor(session.User{ID: 1, Role: tc.role})
			if len(got) != len(tc.want) {
				t.Fatalf("sections = %v, want %v", got, tc.want)
			}
			for _, name := range tc.want {
				if _, ok := got[name]; !ok {
					t.Errorf("missing section %s (have %v)", name, fmt.Sprint(got))
				}
			}
		})
	}
}
