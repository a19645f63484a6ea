package predictions

import (
	"context"
	"encoding/json"

	"github.com/medinsight/medinsight/internal/platform/gateway"
)

// Service forwards prediction calls. Bed occupancy and relapse risk come
// back as opaque documents; their shape belongs to the prediction service.
type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

func (s *Service) NoShow(ctx context.Context, token string, req *NoShowRequest) (*NoShowResponse, error) {
	var out NoShowResponse
	if err := s.gw.PostJSON(ctx, token, "/api/predictions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) BedOccupancy(ctx context.Context, token string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.gw.GetJSON(ctx, token, "/api/predictions/bed-occupancy", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) RelapseRisk(ctx context.Context, token string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.gw.GetJSON(ctx, token, "/api/predictions/relapse-risk", &out); err != nil {
		return nil, err
	}
	return out, nil
}
