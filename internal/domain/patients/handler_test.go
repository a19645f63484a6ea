package patients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medinsight/medinsight/internal/platform/auth"
	"github.com/medinsight/medinsight/internal/platform/gateway"
	"github.com/medinsight/medinsight/internal/platform/keycloak"
	"github.com/medinsight/medinsight/internal/platform/session"
)

var testKey = []byte("patients-test-key")

func signToken(t *testing.T, sub string, role string) string {
	t.Helper()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		RealmAccess: auth.RealmAccess{Roles: []string{role}},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

// testApp wires the handler behind the real middleware chain with a fake
// upstream, the way the server assembles it.
func testApp(t *testing.T, upstream http.HandlerFunc) (*echo.Echo, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore(time.Hour)
	gw := gateway.NewClient(srv.URL, gateway.WithUnauthorizedHook(func(token string) {
		store.Clear(context.Background(), token)
	}))

	e := echo.New()
	e.Use(auth.Middleware(auth.MiddlewareConfig{
		Store:    store,
		Verifier: auth.NewVerifier(auth.VerifierConfig{SigningKey: testKey}),
		Logger:   zerolog.Nop(),
	}))
	NewHandler(NewService(gw)).RegisterRoutes(e.Group("/api/v1"))
	return e, store
}

func addSession(t *testing.T, store *session.MemoryStore, token, role string, id int64) {
	t.Helper()
	err := store.Set(context.Background(), &session.Session{
		Token: token,
		User:  session.User{ID: id, Role: role, Username: "tester"},
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestListForwardsTokenUpstream(t *testing.T) {
	tok := signToken(t, "sub-med", keycloak.RoleMedecin)
	e, store := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+tok {
			t.Errorf("upstream Authorization = %q", got)
		}
		json.NewEncoder(w).Encode([]Patient{{ID: 1, Nom: "Durand", Prenom: "Jeanne"}})
	})
	addSession(t, store, tok, keycloak.RoleMedecin, 77)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var list []Patient
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 || list[0].Nom != "Durand" {
		t.Errorf("list = %+v", list)
	}
}

func TestUpstream401ClearsSessionAndRedirects(t *testing.T) {
	tok := signToken(t, "sub-med", keycloak.RoleMedecin)
	e, store := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	addSession(t, store, tok, keycloak.RoleMedecin, 77)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["redirect"] != "/connexion" {
		t.Errorf("redirect = %q, want /connexion", body["redirect"])
	}
	if sess, _ := store.Get(context.Background(), tok); sess != nil {
		t.Error("session survived a downstream 401")
	}
}

func TestPatientCannotBrowseOtherPatients(t *testing.T) {
	tok := signToken(t, "sub-pat", keycloak.RolePatient)
	e, store := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})
	addSession(t, store, tok, keycloak.RolePatient, 42)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// Wrong role goes home, not to an error page.
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/patient/dashboard" {
		t.Errorf("Location = %q", loc)
	}
}

func TestPatientByUserSelfOnly(t *testing.T) {
	tok := signToken(t, "sub-pat", keycloak.RolePatient)
	e, store := testApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/patients/user/42" {
			t.Errorf("upstream path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Patient{ID: 9, Nom: "Durand"})
	})
	addSession(t, store, tok, keycloak.RolePatient, 42)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/user/42", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("own record status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/patients/user/43", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("other record status = %d, want 403", rec.Code)
	}
}
