// AngelaMos | 2026
// sender.go

package push

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/kallan/backend/internal/config"
)

// Sender delivers one encrypted message and reports the push service's
// HTTP status. A transport failure returns an error and status 0.
type Sender interface {
	Send(ctx context.Context, sub Subscription, message []byte) (int, error)
}

type WebPushSender struct {
	publicKey  string
	privateKey string
	subject    string
	ttl        int
	client     *http.Client
}

// NewWebPushSender takes the subject as configured. webpush-go prefixes
// anything that is not an https URL with mailto: itself.
func NewWebPushSender(cfg config.PushConfig) *WebPushSender {
	return &WebPushSender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subject:    strings.TrimPrefix(cfg.VAPIDSubject, "mailto:"),
		ttl:        int(cfg.TTL.Seconds()),
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *WebPushSender) Send(
	ctx context.Context,
	sub Subscription,
	message []byte,
) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, message,
		&webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		},
		&webpush.Options{
			HTTPClient:      s.client,
			Subscriber:      s.subject,
			VAPIDPublicKey:  s.publicKey,
			VAPIDPrivateKey: s.privateKey,
			TTL:             s.ttl,
			Urgency:         webpush.UrgencyNormal,
		},
	)
	if err != nil {
		return 0, fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // drained below

	//nolint:errcheck // body is informational only
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	return resp.StatusCode, nil
}

// GenerateVAPIDKeys returns a fresh base64url key pair for config.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("generate vapid keys: %w", err)
	}
	return publicKey, privateKey, nil
}
