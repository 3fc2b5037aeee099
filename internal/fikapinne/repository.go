// AngelaMos | 2026
// repository.go

package fikapinne

import (
	"context"
	"fmt"
	"time"

	"github.com/kallan/backend/internal/core"
)

type Repository interface {
	CreateGift(ctx context.Context, gift *Gift) error
	CreateTake(ctx context.Context, take *Take) error
	Totals(ctx context.Context, targetID int64, from, to time.Time) (Totals, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateGift(ctx context.Context, gift *Gift) error {
	query := `
		INSERT INTO fikapinne_gifts (target_id, judge_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	row := core.Conn(ctx, r.db).QueryRowxContext(ctx, query, gift.TargetID, gift.JudgeID)
	if err := row.Scan(&gift.ID, &gift.CreatedAt); err != nil {
		return fmt.Errorf("create fikapinne: %w", core.ClassifyPgError(err))
	}

	return nil
}

func (r *repository) CreateTake(ctx context.Context, take *Take) error {
	query := `
		INSERT INTO fikapinne_takes (target_id, judge_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	row := core.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		take.TargetID,
		take.JudgeID,
		take.Amount,
	)
	if err := row.Scan(&take.ID, &take.CreatedAt); err != nil {
		return fmt.Errorf("create fikapinne take: %w", core.ClassifyPgError(err))
	}

	return nil
}

func (r *repository) Totals(
	ctx context.Context,
	targetID int64,
	from, to time.Time,
) (Totals, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM fikapinne_gifts WHERE target_id = $1) AS given,
			(SELECT COUNT(*) FROM fikapinne_gifts
			 WHERE target_id = $1 AND created_at >= $2 AND created_at < $3) AS given_in_window,
			COALESCE((
				SELECT SUM(amount) FROM fikapinne_takes WHERE target_id = $1
			), 0) AS taken`

	var totals Totals
	if err := core.Conn(ctx, r.db).GetContext(ctx, &totals, query, targetID, from, to); err != nil {
		return Totals{}, fmt.Errorf("fikapinne totals: %w", err)
	}

	return totals, nil
}
