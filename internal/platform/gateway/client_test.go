package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetJSONDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 7, "nom": "Durand"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	var out struct {
		ID  int    `json:"id"`
		Nom string `json:"nom"`
	}
	if err := c.GetJSON(context.Background(), "tok-123", "/api/patients/7", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.ID != 7 || out.Nom != "Durand" {
		t.Errorf("decoded %+v, want id=7 nom=Durand", out)
	}
}

func TestStatusNormalization(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			err := NewClient(srv.URL).GetJSON(context.Background(), "t", "/x", nil)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestUpstreamErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).GetJSON(context.Background(), "t", "/x", nil)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UpstreamError", err)
	}
	if ue.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", ue.Status)
	}
}

func TestUnauthorizedHookFires(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var cleared string
	c := NewClient(srv.URL, WithUnauthorizedHook(func(token string) { cleared = token }))
	err := c.GetJSON(context.Background(), "dead-token", "/api/patients", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if cleared != "dead-token" {
		t.Errorf("hook got %q, want the rejected token", cleared)
	}
}

func TestPostJSONSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42}`))
	}))
	defer srv.Close()

	var out struct {
		ID int `json:"id"`
	}
	in := map[string]string{"motif": "consultation"}
	if err := NewClient(srv.URL).PostJSON(context.Background(), "t", "/api/appointments", in, &out); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if out.ID != 42 {
		t.Errorf("id = %d, want 42", out.ID)
	}
}
