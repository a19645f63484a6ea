package notifications

import (
	"context"
	"fmt"

	"github.com/medinsight/medinsight/internal/platform/gateway"
)

// Service forwards notification operations to the notification service.
type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

func (s *Service) ByUser(ctx context.Context, token string, userID int64) ([]Notification, error) {
	var out []Notification
	if err := s.gw.GetJSON(ctx, token, fmt.Sprintf("/api/notifications/user/%d", userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, token string, id int64) error {
	return s.gw.PutJSON(ctx, token, fmt.Sprintf("/api/notifications/%d/read", id), nil, nil)
}

func (s *Service) MarkAllRead(ctx context.Context, token string, userID int64) error {
	return s.gw.PutJSON(ctx, token, fmt.Sprintf("/api/notifications/user/%d/read-all", userID), nil, nil)
}

func (s *Service) Delete(ctx context.Context, token string, id int64) error {
	return s.gw.Delete(ctx, token, fmt.Sprintf("/api/notifications/%d", id))
}

// SendEmail hands an outbound email to the notification service.
func (s *Service) SendEmail(ctx context.Context, token string, req *EmailRequest) error {
	return s.gw.PostJSON(ctx, token, "/api/notifications/email", req, nil)
}

// CountRecent is the poller's probe: it lists the feed and returns its
// size, which doubles as a liveness check on the notification service.
func (s *Service) CountRecent(ctx context.Context) (int, error) {
	var out []Notification
	if err := s.gw.GetJSON(ctx, "", "/api/notifications", &out); err != nil {
		return 0, err
	}
	return len(out), nil
}
