// AngelaMos | 2026
// repository_test.go

package fikapinne

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kallan/backend/internal/core"
	"github.com/kallan/backend/internal/core/coretest"
	"github.com/kallan/backend/internal/user"
)

func TestPostgresTotals(t *testing.T) {
	db := coretest.PostgresDB(t)
	ctx := context.Background()
	users := user.NewRepository(db)
	repo := NewRepository(db)

	target := &user.User{Username: "mål", PasswordHash: "x", Tier: user.TierHat, IsActive: true}
	judge := &user.User{Username: "anna", PasswordHash: "x", Tier: user.TierVest, IsActive: true}
	require.NoError(t, users.Create(ctx, target))
	require.NoError(t, users.Create(ctx, judge))

	for range 3 {
		require.NoError(t, repo.CreateGift(ctx, &Gift{TargetID: target.ID, JudgeID: judge.ID}))
	}
	require.NoError(t, repo.CreateTake(ctx, &Take{TargetID: target.ID, JudgeID: judge.ID, Amount: 5}))

	from, to := MonthWindow(time.Now(), time.UTC)
	totals, err := repo.Totals(ctx, target.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, Totals{Given: 3, GivenInWindow: 3, Taken: 5}, totals)
	assert.Equal(t, 0, totals.Balance())

	past, err := repo.Totals(ctx, target.ID, from.AddDate(-1, 0, 0), from.AddDate(0, -11, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, past.GivenInWindow)
	assert.Equal(t, 3, past.Given)

	t.Run("judge delete restricted", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, judge.ID)
		require.Error(t, err)
		assert.ErrorIs(t, core.ClassifyPgError(err), core.ErrConstraint)
	})
}
