package appointments

import (
	"context"
	"fmt"

	"github.com/medinsight/medinsight/internal/platform/gateway"
)

// Service forwards appointment operations to the patient service.
type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

func (s *Service) List(ctx context.Context, token string) ([]Appointment, error) {
	var out []Appointment
	if err := s.gw.GetJSON(ctx, token, "/api/appointments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, token string, id int64) (*Appointment, error) {
	var out Appointment
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/appointments/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) ByPatient(ctx context.Context, token string, patientID int64) ([]Appointment, error) {
	var out []Appointment
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/appointments/patient/%d", patientID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ByMedecin(ctx context.Context, token string, medecinID int64) ([]Appointment, error) {
	var out []Appointment
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/appointments/medecin/%d", medecinID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, token string, a *Appointment) (*Appointment, error) {
	var out Appointment
	if err := s.gw.PostJSON(ctx, token, "/api/appointments", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, token string, id int64, a *Appointment) (*Appointment, error) {
	var out Appointment
	if err := s.gw.PutJSON(ctx, token, fmt.Sprintf("/api/appointments/%d", id), a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, token string, id int64, status string) (*Appointment, error) {
	var out Appointment
	err := s.gw.PutJSON(ctx, token, fmt.Sprintf("/api/appointments/%d/status", id), StatusUpdate{Status: status}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, token string, id int64) error {
	return s.gw.Delete(ctx, token, fmt.Sprintf("/api/appointments/%d", id))
}
