// AngelaMos | 2026
// entity.go

package punishment

import (
	"time"
)

const (
	MinAmount = 1
	MaxAmount = 10
)

type Stage string

const (
	StagePending   Stage = "pending"
	StageConfirmed Stage = "confirmed"
)

// Event is a proposed punishment. It counts towards the target's balance
// once confirmed; ConfirmerID and ConfirmedAt are set together.
type Event struct {
	ID          int64      `db:"id"`
	TargetID    int64      `db:"target_id"`
	InitiatorID int64      `db:"initiator_id"`
	ConfirmerID *int64     `db:"confirmer_id"`
	Reason      string     `db:"reason"`
	Amount      int        `db:"amount"`
	CreatedAt   time.Time  `db:"created_at"`
	ConfirmedAt *time.Time `db:"confirmed_at"`
}

func (e *Event) Stage() Stage {
	if e.ConfirmerID == nil {
		return StagePending
	}
	return StageConfirmed
}

func (e *Event) IsConfirmed() bool {
	return e.ConfirmerID != nil
}

// Take is a debit against a target's confirmed balance.
type Take struct {
	ID        int64     `db:"id"`
	TargetID  int64     `db:"target_id"`
	JudgeID   int64     `db:"judge_id"`
	Amount    int       `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

// Totals are the raw sums a balance is derived from.
type Totals struct {
	Confirmed         int `db:"confirmed"`
	ConfirmedInWindow int `db:"confirmed_in_window"`
	Taken             int `db:"taken"`
}

// Available may be negative if the ledger was ever written outside the
// take lock; Balance clamps it.
func (t Totals) Available() int {
	return t.Confirmed - t.Taken
}

func (t Totals) Balance() int {
	return max(0, t.Available())
}

type Stats struct {
	TargetID    int64 `json:"target_id"`
	TotalAmount int   `json:"total_amount"`
	WeekAmount  int   `json:"week_amount"`
}

type ListFilter struct {
	Pending   bool
	Confirmed bool
	TargetID  *int64
	Limit     *int
}
