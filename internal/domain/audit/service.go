package audit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/medinsight/medinsight/internal/platform/gateway"
	"github.com/medinsight/medinsight/pkg/pagination"
)

// Service forwards audit reads to the security service.
type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

func (s *Service) List(ctx context.Context, token string, p pagination.Params) ([]Log, error) {
	var out []Log
	if err := s.gw.GetJSON(ctx, token, "/api/audit?"+p.Query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ByUser(ctx context.Context, token string, userID int64) ([]Log, error) {
	var out []Log
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/audit/user/%d", userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ByAction(ctx context.Context, token, action string) ([]Log, error) {
	var out []Log
	if err := s.gw.GetJSON(ctx, token, "/api/audit/action/"+url.PathEscape(action), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Record writes an audit entry through the security service. The access
// trail middleware uses this as its recorder sink.
func (s *Service) Record(ctx context.Context, token string, l *Log) error {
	return s.gw.PostJSON(ctx, token, "/api/audit", l, nil)
}
