package dossiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medinsight/medinsight/internal/platform/gateway"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(gateway.NewClient(srv.URL))
}

func TestByPatientPath(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/dossiers/patient/42" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Dossier{ID: 3, Status: StatusCreated, Antecedents: []string{"asthme"}})
	})

	d, err := svc.ByPatient(context.Background(), "tok", 42)
	if err != nil {
		t.Fatalf("ByPatient: %v", err)
	}
	if d.ID != 3 || len(d.Antecedents) != 1 {
		t.Errorf("dossier = %+v", d)
	}
}

func TestPrescriptionsByDossier(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/prescriptions/dossier/3" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Prescription{
			{ID: 9, DossierID: 3, Medications: []string{"paracetamol 1g"}},
		})
	})

	list, err := svc.Prescriptions(context.Background(), "tok", 3)
	if err != nil {
		t.Fatalf("Prescriptions: %v", err)
	}
	if len(list) != 1 || list[0].DossierID != 3 {
		t.Errorf("list = %+v", list)
	}
}

func TestCreatePrescriptionBody(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/prescriptions" {
			t.Errorf("call = %s %s", r.Method, r.URL.Path)
		}
		var p Prescription
		json.NewDecoder(r.Body).Decode(&p)
		if p.DossierID != 3 || len(p.Medications) != 2 {
			t.Errorf("prescription = %+v", p)
		}
		p.ID = 10
		json.NewEncoder(w).Encode(p)
	})

	p, err := svc.CreatePrescription(context.Background(), "tok", &Prescription{
		DossierID:   3,
		MedecinID:   7,
		Medications: []string{"paracetamol 1g", "ibuprofene 400mg"},
	})
	if err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}
	if p.ID != 10 {
		t.Errorf("id = %d", p.ID)
	}
}
