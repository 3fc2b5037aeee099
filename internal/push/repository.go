// AngelaMos | 2026
// repository.go

package push

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kallan/backend/internal/core"
)

type Repository interface {
	Upsert(ctx context.Context, sub *Subscription) error
	DeleteForUser(ctx context.Context, endpoint string, userID int64) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
	ListByUsers(ctx context.Context, userIDs []int64) ([]Subscription, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Upsert keys on the endpoint: a browser that re-subscribes under another
// account moves to that account.
func (r *repository) Upsert(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (endpoint) DO UPDATE SET
			user_id      = EXCLUDED.user_id,
			p256dh       = EXCLUDED.p256dh,
			auth         = EXCLUDED.auth,
			user_agent   = EXCLUDED.user_agent,
			last_seen_at = NOW()
		RETURNING id, created_at, last_seen_at`

	row := core.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		sub.UserID,
		sub.Endpoint,
		sub.P256dh,
		sub.Auth,
		sub.UserAgent,
	)
	if err := row.Scan(&sub.ID, &sub.CreatedAt, &sub.LastSeenAt); err != nil {
		return fmt.Errorf("upsert subscription: %w", core.ClassifyPgError(err))
	}

	return nil
}

func (r *repository) DeleteForUser(
	ctx context.Context,
	endpoint string,
	userID int64,
) (int64, error) {
	query := `DELETE FROM push_subscriptions WHERE endpoint = $1 AND user_id = $2`

	result, err := core.Conn(ctx, r.db).ExecContext(ctx, query, endpoint, userID)
	if err != nil {
		return 0, fmt.Errorf("delete subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete subscription: %w", err)
	}

	return rows, nil
}

func (r *repository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM push_subscriptions WHERE id = $1`

	if _, err := core.Conn(ctx, r.db).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete subscription %d: %w", id, err)
	}

	return nil
}

func (r *repository) ListByUsers(
	ctx context.Context,
	userIDs []int64,
) ([]Subscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	db := core.Conn(ctx, r.db)

	query, args, err := sqlx.In(`
		SELECT id, user_id, endpoint, p256dh, auth, user_agent, created_at, last_seen_at
		FROM push_subscriptions
		WHERE user_id IN (?)
		ORDER BY user_id, id`,
		userIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	var subs []Subscription
	if err := db.SelectContext(ctx, &subs, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	return subs, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := core.Conn(ctx, r.db).GetContext(ctx, &n,
		`SELECT COUNT(*) FROM push_subscriptions`)
	if err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return n, nil
}
