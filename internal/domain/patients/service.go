package patients

import (
	"context"
	"fmt"

	"github.com/medinsight/medinsight/internal/platform/gateway"
)

// Service forwards patient operations to the patient service behind the
// gateway. The caller's token travels with every request.
type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

func (s *Service) List(ctx context.Context, token string) ([]Patient, error) {
	var out []Patient
	if err := s.gw.GetJSON(ctx, token, "/api/patients", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, token string, id int64) (*Patient, error) {
	var out Patient
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/patients/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByUser resolves a patient by the numeric user ID issued at login.
func (s *Service) GetByUser(ctx context.Context, token string, userID int64) (*Patient, error) {
	var out Patient
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/patients/user/%d", userID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Create(ctx context.Context, token string, p *Patient) (*Patient, error) {
	var out Patient
	if err := s.gw.PostJSON(ctx, token, "/api/patients", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, token string, id int64, p *Patient) (*Patient, error) {
	var out Patient
	if err := s.gw.PutJSON(ctx, token, fmt.Sprintf("/api/patients/%d", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, token string, id int64) error {
	return s.gw.Delete(ctx, token, fmt.Sprintf("/api/patients/%d", id))
}
