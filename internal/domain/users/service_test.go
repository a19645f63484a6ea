package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medinsight/medinsight/internal/platform/keycloak"
)

// fakeRealm emulates the admin user and role-mapping endpoints.
type fakeRealm struct {
	mu       sync.Mutex
	users    []keycloak.User
	mappings map[string][]keycloak.Role
}

func (f *fakeRealm) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /realms/master/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "admin-tok"})
	})
	mux.HandleFunc("GET /admin/realms/medinsight/users", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.users)
	})
	mux.HandleFunc("GET /admin/realms/medinsight/roles/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/admin/realms/medinsight/roles/")
		json.NewEncoder(w).Encode(keycloak.Role{ID: "role-" + name, Name: name})
	})

	// role mappings: GET lists, POST assigns, DELETE removes
	mux.HandleFunc("/admin/realms/medinsight/users/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/admin/realms/medinsight/users/"), "/")
		userID := parts[0]
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			out := f.mappings[userID]
			if out == nil {
				out = []keycloak.Role{}
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var roles []keycloak.Role
			json.NewDecoder(r.Body).Decode(&roles)
			f.mappings[userID] = append(f.mappings[userID], roles...)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			var roles []keycloak.Role
			json.NewDecoder(r.Body).Decode(&roles)
			kept := f.mappings[userID][:0]
			for _, have := range f.mappings[userID] {
				remove := false
				for _, r := range roles {
					if r.Name == have.Name {
						remove = true
					}
				}
				if !remove {
					kept = append(kept, have)
				}
			}
			f.mappings[userID] = kept
			w.WriteHeader(http.StatusNoContent)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeRealm) roleNames(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, r := range f.mappings[userID] {
		names = append(names, r.Name)
	}
	return names
}

func newTestService(t *testing.T, realm *fakeRealm) *Service {
	t.Helper()
	srv := realm.server(t)
	kc := keycloak.NewClient(keycloak.Config{
		BaseURL:       srv.URL,
		Realm:         "medinsight",
		AdminUser:     "admin",
		AdminPassword: "admin",
	})
	return NewService(kc, zerolog.Nop())
}

func TestListResolvesManagedRole(t *testing.T) {
	realm := &fakeRealm{
		users: []keycloak.User{
			{ID: "u1", Username: "jdurand", Email: "j@example.org", Enabled: true},
			{ID: "u2", Username: "dr.martin", Enabled: true},
		},
		mappings: map[string][]keycloak.Role{
			"u1": {{Name: "offline_access"}, {Name: "PATIENT"}},
			"u2": {{Name: "MEDECIN"}},
		},
	}
	svc := newTestService(t, realm)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Role != "PATIENT" || list[1].Role != "MEDECIN" {
		t.Errorf("roles = %q, %q", list[0].Role, list[1].Role)
	}
}

func TestChangeRoleSwapsManagedRolesOnly(t *testing.T) {
	realm := &fakeRealm{
		users: []keycloak.User{{ID: "u1", Username: "jdurand"}},
		mappings: map[string][]keycloak.Role{
			"u1": {{Name: "offline_access"}, {Name: "PATIENT"}},
		},
	}
	svc := newTestService(t, realm)

	err := svc.ChangeRole(context.Background(), &ChangeRoleRequest{UserID: "u1", Role: "MEDECIN"})
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}

	names := realm.roleNames("u1")
	hasMedecin, hasPatient, hasBuiltin := false, false, false
	for _, n := range names {
		switch n {
		case "MEDECIN":
			hasMedecin = true
		case "PATIENT":
			hasPatient = true
		case "offline_access":
			hasBuiltin = true
		}
	}
	if !hasMedecin {
		t.Error("MEDECIN was not assigned")
	}
	if hasPatient {
		t.Error("previous managed role PATIENT was not removed")
	}
	if !hasBuiltin {
		t.Error("built-in role was removed; only managed roles may be touched")
	}
}

func TestChangeRoleUnknownRole(t *testing.T) {
	svc := newTestService(t, &fakeRealm{mappings: map[string][]keycloak.Role{}})

	err := svc.ChangeRole(context.Background(), &ChangeRoleRequest{UserID: "u1", Role: "SUPERUSER"})
	if !errors.Is(err, ErrRoleUnknown) {
		t.Errorf("err = %v, want ErrRoleUnknown", err)
	}
}
