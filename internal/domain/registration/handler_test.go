package registration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T, identity *fakeIdentity, profiles ProfileCreator) *echo.Echo {
	t.Helper()
	e := echo.New()
	h := NewHandler(newTestService(t, identity, profiles))
	h.Register(e.Group("/api/auth"))
	return e
}

func postRegister(t *testing.T, e *echo.Echo, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const registerBody = `{
	"username": "jdurand",
	"nom": "Durand",
	"prenom": "Jeanne",
	"email": "jeanne.durand@example.org",
	"password": "s3cret!",
	"dateNaissance": "1987-04-12",
	"gender": "F",
	"telephone": "+33611223344",
	"emergencyContact": "+33655667788",
	"rue": "12 rue des Lilas",
	"ville": "Lyon",
	"codePostal": "69003",
	"pays": "France"
}`

func TestRegisterEndpointThenDuplicate(t *testing.T) {
	identity := newFakeIdentity()
	e := newTestHandler(t, identity, &fakeProfiles{})

	rec := postRegister(t, e, registerBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("first register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Message != "Compte créé avec succès" {
		t.Errorf("body = %+v", body)
	}
	if body.Role != "PATIENT" {
		t.Errorf("role = %q, want PATIENT", body.Role)
	}
	if len(body.Provisioning) != 0 {
		t.Errorf("provisioning = %v, want empty on a full flow", body.Provisioning)
	}

	rec = postRegister(t, e, registerBody)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rec.Code)
	}
	var errBody map[string]string
	json.Unmarshal(rec.Body.Bytes(), &errBody)
	if errBody["error"] != "Un utilisateur avec cet email existe déjà" {
		t.Errorf("error = %q", errBody["error"])
	}
	if identity.userCount() != 1 {
		t.Errorf("accounts = %d, want 1", identity.userCount())
	}
}

func TestRegisterEndpointDegradedProfile(t *testing.T) {
	e := newTestHandler(t, newFakeIdentity(), &fakeProfiles{fail: true})

	rec := postRegister(t, e, registerBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even with the patient service down", rec.Code)
	}
	var body response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success {
		t.Error("success = false, want true")
	}
	if len(body.Provisioning) != 1 || body.Provisioning[0] != StageProfileCreate {
		t.Errorf("provisioning = %v, want [%s]", body.Provisioning, StageProfileCreate)
	}
}

func TestRegisterEndpointMissingFields(t *testing.T) {
	e := newTestHandler(t, newFakeIdentity(), &fakeProfiles{})

	rec := postRegister(t, e, `{"username": "jdurand"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
