// AngelaMos | 2026
// repository.go

package punishment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kallan/backend/internal/core"
)

type Repository interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id int64) (*Event, error)
	LockEvent(ctx context.Context, id int64) (*Event, error)
	ConfirmEvent(ctx context.Context, id, confirmerID int64, at time.Time) error
	DeleteEvent(ctx context.Context, id int64) error
	ListEvents(ctx context.Context, filter ListFilter) ([]Event, error)
	CreateTake(ctx context.Context, take *Take) error
	Totals(ctx context.Context, targetID int64, from, to time.Time) (Totals, error)
	CountPending(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const eventColumns = `
	id, target_id, initiator_id, confirmer_id, reason, amount, created_at, confirmed_at`

func (r *repository) CreateEvent(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO punishment_events (target_id, initiator_id, reason, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	row := core.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		event.TargetID,
		event.InitiatorID,
		event.Reason,
		event.Amount,
	)
	if err := row.Scan(&event.ID, &event.CreatedAt); err != nil {
		return fmt.Errorf("create punishment event: %w", core.ClassifyPgError(err))
	}

	return nil
}

func (r *repository) GetEvent(ctx context.Context, id int64) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM punishment_events WHERE id = $1`
	return r.getEvent(ctx, "get punishment event", query, id)
}

// LockEvent locks the event row alone. Joining the user tables here would
// widen the lock to every referenced user row.
func (r *repository) LockEvent(ctx context.Context, id int64) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM punishment_events WHERE id = $1 FOR UPDATE`
	return r.getEvent(ctx, "lock punishment event", query, id)
}

func (r *repository) getEvent(
	ctx context.Context,
	op, query string,
	id int64,
) (*Event, error) {
	var event Event
	err := core.Conn(ctx, r.db).GetContext(ctx, &event, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &event, nil
}

// ConfirmEvent only touches a still-pending row; a row that is already
// confirmed reports ErrConflict.
func (r *repository) ConfirmEvent(
	ctx context.Context,
	id, confirmerID int64,
	at time.Time,
) error {
	query := `
		UPDATE punishment_events
		SET confirmer_id = $2, confirmed_at = $3
		WHERE id = $1 AND confirmer_id IS NULL`

	result, err := core.Conn(ctx, r.db).ExecContext(ctx, query, id, confirmerID, at)
	if err != nil {
		return fmt.Errorf("confirm punishment event: %w", core.ClassifyPgError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirm punishment event: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("confirm punishment event: %w", core.ErrConflict)
	}

	return nil
}

func (r *repository) DeleteEvent(ctx context.Context, id int64) error {
	query := `DELETE FROM punishment_events WHERE id = $1 AND confirmer_id IS NULL`

	result, err := core.Conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete punishment event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete punishment event: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete punishment event: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListEvents(
	ctx context.Context,
	filter ListFilter,
) ([]Event, error) {
	var conditions []string
	var args []any
	argIdx := 1

	switch {
	case filter.Pending && !filter.Confirmed:
		conditions = append(conditions, "confirmer_id IS NULL")
	case filter.Confirmed && !filter.Pending:
		conditions = append(conditions, "confirmer_id IS NOT NULL")
	}

	if filter.TargetID != nil {
		conditions = append(conditions, fmt.Sprintf("target_id = $%d", argIdx))
		args = append(args, *filter.TargetID)
		argIdx++
	}

	query := `SELECT ` + eventColumns + ` FROM punishment_events`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	if filter.Limit != nil {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, *filter.Limit)
	}

	var events []Event
	if err := core.Conn(ctx, r.db).SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list punishment events: %w", err)
	}

	return events, nil
}

func (r *repository) CreateTake(ctx context.Context, take *Take) error {
	query := `
		INSERT INTO punishment_takes (target_id, judge_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	row := core.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		take.TargetID,
		take.JudgeID,
		take.Amount,
	)
	if err := row.Scan(&take.ID, &take.CreatedAt); err != nil {
		return fmt.Errorf("create punishment take: %w", core.ClassifyPgError(err))
	}

	return nil
}

// Totals sums confirmed events overall and within [from, to) by
// confirmed_at, plus all takes, for one target.
func (r *repository) Totals(
	ctx context.Context,
	targetID int64,
	from, to time.Time,
) (Totals, error) {
	query := `
		SELECT
			COALESCE((
				SELECT SUM(amount) FROM punishment_events
				WHERE target_id = $1 AND confirmer_id IS NOT NULL
			), 0) AS confirmed,
			COALESCE((
				SELECT SUM(amount) FROM punishment_events
				WHERE target_id = $1 AND confirmer_id IS NOT NULL
				  AND confirmed_at >= $2 AND confirmed_at < $3
			), 0) AS confirmed_in_window,
			COALESCE((
				SELECT SUM(amount) FROM punishment_takes
				WHERE target_id = $1
			), 0) AS taken`

	var totals Totals
	if err := core.Conn(ctx, r.db).GetContext(ctx, &totals, query, targetID, from, to); err != nil {
		return Totals{}, fmt.Errorf("punishment totals: %w", err)
	}

	return totals, nil
}

func (r *repository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := core.Conn(ctx, r.db).GetContext(ctx, &n,
		`SELECT COUNT(*) FROM punishment_events WHERE confirmer_id IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("count pending punishments: %w", err)
	}
	return n, nil
}
