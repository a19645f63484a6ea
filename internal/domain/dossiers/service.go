package dossiers

import (
	"context"
	"fmt"

	"github.com/medinsight/medinsight/internal/platform/gateway"
)

// Service forwards dossier and prescription operations to the gateway.
type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

func (s *Service) List(ctx context.Context, token string) ([]Dossier, error) {
	var out []Dossier
	if err := s.gw.GetJSON(ctx, token, "/api/dossiers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, token string, id int64) (*Dossier, error) {
	var out Dossier
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/dossiers/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) ByPatient(ctx context.Context, token string, patientID int64) (*Dossier, error) {
	var out Dossier
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/dossiers/patient/%d", patientID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, token string, id int64, d *Dossier) (*Dossier, error) {
	var out Dossier
	if err := s.gw.PutJSON(ctx, token, fmt.Sprintf("/api/dossiers/%d", id), d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Prescriptions(ctx context.Context, token string, dossierID int64) ([]Prescription, error) {
	var out []Prescription
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/prescriptions/dossier/%d", dossierID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) CreatePrescription(ctx context.Context, token string, p *Prescription) (*Prescription, error) {
	var out Prescription
	if err := s.gw.PostJSON(ctx, token, "/api/prescriptions", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
