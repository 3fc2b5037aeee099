// AngelaMos | 2026
// entity.go

package user

import (
	"slices"
	"time"
)

type Tier string

const (
	TierBandana Tier = "bandana"
	TierHat     Tier = "hat"
	TierVest    Tier = "vest"
)

func (t Tier) Valid() bool {
	switch t {
	case TierBandana, TierHat, TierVest:
		return true
	}
	return false
}

// Rank orders tiers bandana < hat < vest. Unknown tiers rank zero.
func (t Tier) Rank() int {
	switch t {
	case TierBandana:
		return 1
	case TierHat:
		return 2
	case TierVest:
		return 3
	}
	return 0
}

const (
	PermManageFikapinnar = "punishments.manage_fikapinnar"
)

type User struct {
	ID                 int64     `db:"id"`
	Username           string    `db:"username"`
	PasswordHash       string    `db:"password_hash"`
	Tier               Tier      `db:"tier"`
	AvatarPath         *string   `db:"avatar_path"`
	ForcePasswordReset bool      `db:"force_password_reset"`
	IsActive           bool      `db:"is_active"`
	IsStaff            bool      `db:"is_staff"`
	IsSuperuser        bool      `db:"is_superuser"`
	TokenVersion       int       `db:"token_version"`
	DateJoined         time.Time `db:"date_joined"`
	UpdatedAt          time.Time `db:"updated_at"`

	Permissions []string `db:"-"`
}

// HasPermission follows the usual superuser convention: an active
// superuser holds every permission, inactive users hold none.
func (u *User) HasPermission(perm string) bool {
	if !u.IsActive {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	return slices.Contains(u.Permissions, perm)
}

// EffectivePermissions lists what HasPermission would grant.
func (u *User) EffectivePermissions() []string {
	if !u.IsActive {
		return []string{}
	}
	if u.IsSuperuser {
		return slices.Clone(KnownPermissions)
	}
	perms := make([]string, 0, len(u.Permissions))
	perms = append(perms, u.Permissions...)
	slices.Sort(perms)
	return perms
}

var KnownPermissions = []string{
	PermManageFikapinnar,
}

func IsKnownPermission(perm string) bool {
	return slices.Contains(KnownPermissions, perm)
}
