package medecins

import (
	"context"
	"fmt"

	"github.com/medinsight/medinsight/internal/platform/gateway"
)

// Service forwards physician reads to the medecin service.
type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

func (s *Service) List(ctx context.Context, token string) ([]Medecin, error) {
	var out []Medecin
	if err := s.gw.GetJSON(ctx, token, "/api/medecins", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, token string, id int64) (*Medecin, error) {
	var out Medecin
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/medecins/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByUser resolves a physician by the numeric user ID issued at login.
func (s *Service) GetByUser(ctx context.Context, token string, userID int64) (*Medecin, error) {
	var out Medecin
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/medecins/user/%d", userID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Planning(ctx context.Context, token string, medecinID int64) ([]Planning, error) {
	var out []Planning
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/medecins/%d/planning", medecinID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, token string, id int64, m *Medecin) (*Medecin, error) {
	var out Medecin
	if err := s.gw.PutJSON(ctx, token, fmt.Sprintf("/api/medecins/%d", id), m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
