// AngelaMos | 2026
// dto.go

package user

import (
	"strings"
)

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=1,max=150"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Tier     string `json:"tier"     validate:"omitempty,oneof=bandana hat vest"`
	IsStaff  bool   `json:"is_staff"`
}

type UpdateUserTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=bandana hat vest"`
}

type UpdateUserActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// MiniResponse is how a user is embedded in ledger records and listings.
type MiniResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Tier      string  `json:"tier"`
}

type MeResponse struct {
	MiniResponse
	ForcePasswordReset bool     `json:"force_password_reset"`
	Permissions        []string `json:"permissions"`
}

type AdminUserResponse struct {
	MeResponse
	IsActive bool `json:"is_active"`
	IsStaff  bool `json:"is_staff"`
}

type ListUsersParams struct {
	Search    string
	ExcludeID int64
	Limit     int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 50
)

func (p *ListUsersParams) Normalize() {
	p.Search = strings.TrimSpace(p.Search)
}

// AvatarURLs turns a stored avatar path into a public URL.
type AvatarURLs interface {
	URL(path string) string
}

func ToMiniResponse(u *User, urls AvatarURLs) MiniResponse {
	tier := string(u.Tier)
	if tier == "" {
		tier = string(TierBandana)
	}

	var avatar *string
	if u.AvatarPath != nil && *u.AvatarPath != "" && urls != nil {
		url := urls.URL(*u.AvatarPath)
		avatar = &url
	}

	return MiniResponse{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: avatar,
		Tier:      tier,
	}
}

func ToMeResponse(u *User, urls AvatarURLs) MeResponse {
	return MeResponse{
		MiniResponse:       ToMiniResponse(u, urls),
		ForcePasswordReset: u.ForcePasswordReset,
		Permissions:        u.EffectivePermissions(),
	}
}

func ToAdminUserResponse(u *User, urls AvatarURLs) AdminUserResponse {
	return AdminUserResponse{
		MeResponse: ToMeResponse(u, urls),
		IsActive:   u.IsActive,
		IsStaff:    u.IsStaff,
	}
}

func ToMiniResponseList(users []User, urls AvatarURLs) []MiniResponse {
	responses := make([]MiniResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToMiniResponse(&u, urls))
	}
	return responses
}
