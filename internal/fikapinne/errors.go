// AngelaMos | 2026
// errors.go

package fikapinne

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kallan/backend/internal/core"
)

var (
	ErrNotAllowed     = core.ForbiddenError("Not allowed.")
	ErrSelfGive       = core.BadRequestError("You cannot give yourself a fikapinne.")
	ErrSelfTake       = core.BadRequestError("You cannot take from yourself.")
	ErrInvalidAmount  = core.BadRequestError("Amount must be 3 or 5.")
	ErrTargetNotFound = core.NotFoundError("user")
	ErrConstraint     = core.NewAppError(
		core.ErrConstraint,
		"Invalid fikapinne (constraint violation).",
		http.StatusBadRequest,
		"CONSTRAINT_VIOLATION",
	)

	ErrInsufficientBalance = errors.New("insufficient fikapinne balance")
)

func insufficientBalance(current int) error {
	return core.NewAppError(
		fmt.Errorf("%w: %w", core.ErrInvalidInput, ErrInsufficientBalance),
		fmt.Sprintf("Inte tillräckligt många fikapinnar (%d)", current),
		http.StatusBadRequest,
		"INSUFFICIENT_BALANCE",
	)
}
