// AngelaMos | 2026
// dispatcher.go

package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kallan/backend/internal/core"
)

// Dispatcher fans a payload out to every subscription of the recipients.
// Delivery is best-effort: failures are logged per subscription and never
// returned to the caller.
type Dispatcher struct {
	repo    Repository
	sender  Sender
	enabled bool
}

func NewDispatcher(repo Repository, sender Sender, enabled bool) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		sender:  sender,
		enabled: enabled,
	}
}

// Notify returns how many subscriptions of each recipient accepted the
// message.
func (d *Dispatcher) Notify(
	ctx context.Context,
	payload Payload,
	userIDs ...int64,
) map[int64]int {
	delivered := make(map[int64]int, len(userIDs))
	if len(userIDs) == 0 {
		return delivered
	}

	if !d.enabled {
		slog.DebugContext(ctx, "push disabled, skipping notification",
			"title", payload.Title,
			"recipients", len(userIDs),
		)
		return delivered
	}

	ctx, span := core.StartSpan(ctx, "push.notify",
		attribute.Int("push.recipients", len(userIDs)),
	)
	defer span.End()

	message, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "encode push payload", "error", err)
		return delivered
	}

	subs, err := d.repo.ListByUsers(ctx, userIDs)
	if err != nil {
		slog.WarnContext(ctx, "load push subscriptions", "error", err)
		core.SetSpanError(ctx, err)
		return delivered
	}

	for _, sub := range subs {
		if d.deliver(ctx, sub, message) {
			delivered[sub.UserID]++
		}
	}

	return delivered
}

func (d *Dispatcher) deliver(ctx context.Context, sub Subscription, message []byte) bool {
	status, err := d.sender.Send(ctx, sub, message)
	if err != nil {
		slog.WarnContext(ctx, "push delivery failed",
			"user_id", sub.UserID,
			"endpoint_host", endpointHost(sub.Endpoint),
			"error", err,
		)
		return false
	}

	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		if err := d.repo.DeleteByID(ctx, sub.ID); err != nil {
			slog.WarnContext(ctx, "delete expired push subscription",
				"subscription_id", sub.ID,
				"error", err,
			)
			return false
		}
		slog.InfoContext(ctx, "push subscription expired, deleted",
			"user_id", sub.UserID,
			"endpoint_host", endpointHost(sub.Endpoint),
			"status", status,
		)
		return false
	case status < 200 || status >= 300:
		slog.WarnContext(ctx, "push delivery rejected",
			"user_id", sub.UserID,
			"endpoint_host", endpointHost(sub.Endpoint),
			"status", status,
		)
		return false
	}

	return true
}

func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
