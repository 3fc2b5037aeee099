// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=128"`
}

type SetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type LoginResponse struct {
	OK                 bool `json:"ok"`
	ForcePasswordReset bool `json:"force_password_reset"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// LoginResult is what the handler needs to set the session cookie.
type LoginResult struct {
	Cookie             string
	ExpiresAt          time.Time
	ForcePasswordReset bool
}
