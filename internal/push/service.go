// AngelaMos | 2026
// service.go

package push

import (
	"context"
	"log/slog"
	"strings"
)

type Service struct {
	repo      Repository
	publicKey string
}

func NewService(repo Repository, publicKey string) *Service {
	return &Service{repo: repo, publicKey: publicKey}
}

func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

func (s *Service) Subscribe(
	ctx context.Context,
	userID int64,
	req SubscribeRequest,
	userAgent string,
) (*Subscription, error) {
	sub := &Subscription{
		UserID:    userID,
		Endpoint:  strings.TrimSpace(req.Endpoint),
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: userAgent,
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

// Unsubscribe only removes the endpoint when the caller owns it. Removing
// nothing is not an error.
func (s *Service) Unsubscribe(
	ctx context.Context,
	userID int64,
	endpoint string,
) (int64, error) {
	n, err := s.repo.DeleteForUser(ctx, strings.TrimSpace(endpoint), userID)
	if err != nil {
		return 0, err
	}

	if n == 0 {
		slog.DebugContext(ctx, "unsubscribe matched nothing", "user_id", userID)
	}

	return n, nil
}

func (s *Service) CountSubscriptions(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
