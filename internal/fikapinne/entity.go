// AngelaMos | 2026
// entity.go

package fikapinne

import (
	"slices"
	"time"
)

// TakeAmounts are the only debits a take may make.
var TakeAmounts = []int{3, 5}

func ValidTakeAmount(amount int) bool {
	return slices.Contains(TakeAmounts, amount)
}

// Gift is one fikapinne handed to a target. Each gift is worth one.
type Gift struct {
	ID        int64     `db:"id"`
	TargetID  int64     `db:"target_id"`
	JudgeID   int64     `db:"judge_id"`
	CreatedAt time.Time `db:"created_at"`
}

type Take struct {
	ID        int64     `db:"id"`
	TargetID  int64     `db:"target_id"`
	JudgeID   int64     `db:"judge_id"`
	Amount    int       `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

type Totals struct {
	Given         int `db:"given"`
	GivenInWindow int `db:"given_in_window"`
	Taken         int `db:"taken"`
}

func (t Totals) Balance() int {
	return max(0, t.Given-t.Taken)
}

type Stats struct {
	TargetID    int64 `json:"target_id"`
	TotalAmount int   `json:"total_amount"`
	MonthAmount int   `json:"month_amount"`
}

// MonthWindow returns [1st 00:00, 1st of next month 00:00) in loc.
func MonthWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
