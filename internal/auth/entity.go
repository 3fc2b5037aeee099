// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// Session is the server-side record a session cookie points at.
type Session struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	TokenVersion int       `json:"token_version"`
	UserAgent    string    `json:"user_agent"`
	IPAddress    string    `json:"ip_address"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

type UserInfo struct {
	ID                 int64
	Username           string
	PasswordHash       string
	IsActive           bool
	IsStaff            bool
	ForcePasswordReset bool
	TokenVersion       int
}
