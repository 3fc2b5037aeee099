// AngelaMos | 2026
// policy.go

package punishment

import (
	"github.com/kallan/backend/internal/user"
)

// CheckConfirmTiers applies the confirmation rule to the initiator's and
// the confirmer's tier: neither may be a bandana and at least one must be
// a vest.
func CheckConfirmTiers(initiator, confirmer user.Tier) error {
	if !confirmer.Valid() {
		return ErrConfirmerTierMissing
	}
	if !initiator.Valid() {
		return ErrInitiatorTierMissing
	}

	if initiator == user.TierBandana || confirmer == user.TierBandana {
		return ErrBandanaConfirm
	}

	if initiator != user.TierVest && confirmer != user.TierVest {
		return ErrTierRule
	}

	return nil
}

func CanTake(judge user.Tier) bool {
	return judge == user.TierVest
}

func validAmount(amount int) bool {
	return amount >= MinAmount && amount <= MaxAmount
}
