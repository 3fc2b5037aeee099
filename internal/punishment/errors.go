// AngelaMos | 2026
// errors.go

package punishment

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kallan/backend/internal/core"
)

var (
	ErrSelfPunish      = core.BadRequestError("You cannot punish yourself.")
	ErrInvalidAmount   = core.BadRequestError("Amount must be between 1 and 10.")
	ErrInvalidLimit    = core.BadRequestError("limit must be at least 1")
	ErrNoStageSelected = core.BadRequestError("Set pending=1 or confirmed=1 (or both).")
	ErrConstraint      = core.NewAppError(
		core.ErrConstraint,
		"Invalid punishment (constraint violation).",
		http.StatusBadRequest,
		"CONSTRAINT_VIOLATION",
	)

	ErrEventNotFound = core.NewAppError(
		core.ErrNotFound,
		"Punishment event not found.",
		http.StatusNotFound,
		"NOT_FOUND",
	)
	ErrTargetNotFound = core.NotFoundError("user")

	ErrAlreadyConfirmed = core.NewAppError(
		core.ErrConflict,
		"This punishment is already confirmed.",
		http.StatusBadRequest,
		"ALREADY_CONFIRMED",
	)
	ErrTargetCannotConfirm    = core.ForbiddenError("Target cannot confirm their own punishment.")
	ErrInitiatorCannotConfirm = core.ForbiddenError("Initiator cannot confirm their own punishment.")
	ErrConfirmerTierMissing   = core.NewAppError(
		core.ErrInvalidState,
		"User tier is missing.",
		http.StatusBadRequest,
		"INVALID_STATE",
	)
	ErrInitiatorTierMissing = core.NewAppError(
		core.ErrInvalidState,
		"Initiator tier is missing.",
		http.StatusBadRequest,
		"INVALID_STATE",
	)
	ErrBandanaConfirm = core.ForbiddenError("Bandanas cannot participate in confirmations.")
	ErrTierRule       = core.ForbiddenError("Not allowed to confirm (tier rule).")

	ErrDeleteConfirmed = core.NewAppError(
		core.ErrInvalidState,
		"Cannot delete a confirmed punishment.",
		http.StatusBadRequest,
		"INVALID_STATE",
	)
	ErrNotInitiator = core.ForbiddenError("Only the initiator can delete this punishment.")

	ErrOnlyVestsTake = core.ForbiddenError("Only vests can take punishments.")
	ErrSelfTake      = core.BadRequestError("Judge cannot take punishments from themselves.")

	ErrInsufficientBalance = errors.New("insufficient punishment balance")
)

func insufficientBalance(available int) error {
	return core.NewAppError(
		fmt.Errorf("%w: %w", core.ErrInvalidInput, ErrInsufficientBalance),
		fmt.Sprintf("Inte tillräckligt många straff kvar, antal kvar: %d", available),
		http.StatusBadRequest,
		"INSUFFICIENT_BALANCE",
	)
}
