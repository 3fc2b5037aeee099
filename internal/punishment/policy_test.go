// AngelaMos | 2026
// policy_test.go

package punishment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kallan/backend/internal/user"
)

func TestCheckConfirmTiers(t *testing.T) {
	tests := []struct {
		name      string
		initiator user.Tier
		confirmer user.Tier
		want      error
	}{
		{"vest and vest", user.TierVest, user.TierVest, nil},
		{"hat initiator, vest confirmer", user.TierHat, user.TierVest, nil},
		{"vest initiator, hat confirmer", user.TierVest, user.TierHat, nil},
		{"hat and hat", user.TierHat, user.TierHat, ErrTierRule},
		{"bandana initiator", user.TierBandana, user.TierVest, ErrBandanaConfirm},
		{"bandana confirmer", user.TierVest, user.TierBandana, ErrBandanaConfirm},
		{"missing confirmer tier", user.TierVest, "", ErrConfirmerTierMissing},
		{"missing initiator tier", "", user.TierVest, ErrInitiatorTierMissing},
		{"both missing reports confirmer", "", "", ErrConfirmerTierMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConfirmTiers(tt.initiator, tt.confirmer)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCanTake(t *testing.T) {
	assert.True(t, CanTake(user.TierVest))
	assert.False(t, CanTake(user.TierHat))
	assert.False(t, CanTake(user.TierBandana))
	assert.False(t, CanTake(""))
}

func TestWeekWindow(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	monday := time.Date(2026, time.October, 12, 0, 0, 0, 0, cet)

	tests := []struct {
		name string
		now  time.Time
	}{
		{"monday midnight", monday},
		{"wednesday noon", time.Date(2026, time.October, 14, 12, 0, 0, 0, cet)},
		{"sunday just before midnight", time.Date(2026, time.October, 18, 23, 59, 59, 0, cet)},
		{"sunday evening UTC is still sunday locally", time.Date(2026, time.October, 18, 22, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekWindow(tt.now, cet)
			assert.True(t, start.Equal(monday), "start %s", start)
			assert.True(t, end.Equal(monday.AddDate(0, 0, 7)), "end %s", end)
		})
	}

	t.Run("monday midnight UTC is monday 01:00 locally", func(t *testing.T) {
		start, _ := WeekWindow(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), cet)
		assert.True(t, start.Equal(monday.AddDate(0, 0, 7)))
	})
}

func TestTotalsBalanceClamps(t *testing.T) {
	assert.Equal(t, 0, Totals{Confirmed: 2, Taken: 5}.Balance())
	assert.Equal(t, -3, Totals{Confirmed: 2, Taken: 5}.Available())
	assert.Equal(t, 4, Totals{Confirmed: 6, Taken: 2}.Balance())
}
