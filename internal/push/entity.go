// AngelaMos | 2026
// entity.go

package push

import (
	"time"
)

type Subscription struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	Endpoint   string    `db:"endpoint"`
	P256dh     string    `db:"p256dh"`
	Auth       string    `db:"auth"`
	UserAgent  string    `db:"user_agent"`
	CreatedAt  time.Time `db:"created_at"`
	LastSeenAt time.Time `db:"last_seen_at"`
}

// Payload is the JSON document the service worker receives.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}
