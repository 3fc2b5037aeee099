// AngelaMos | 2026
// dto.go

package punishment

import (
	"time"

	"github.com/kallan/backend/internal/user"
)

type CreateEventRequest struct {
	TargetID int64  `json:"target_id" validate:"required,min=1"`
	Amount   int    `json:"amount"    validate:"required,min=1,max=10"`
	Reason   string `json:"reason"    validate:"max=2000"`
}

type TakeRequest struct {
	TargetID int64 `json:"target_id" validate:"required,min=1"`
	Amount   int   `json:"amount"    validate:"required,min=1,max=10"`
}

type EventResponse struct {
	ID          int64              `json:"id"`
	Target      user.MiniResponse  `json:"target"`
	Initiator   user.MiniResponse  `json:"initiator"`
	Confirmer   *user.MiniResponse `json:"confirmer"`
	Reason      string             `json:"reason"`
	Amount      int                `json:"amount"`
	CreatedAt   time.Time          `json:"created_at"`
	ConfirmedAt *time.Time         `json:"confirmed_at"`
	Stage       Stage              `json:"stage"`
}

type TakeResponse struct {
	ID        int64             `json:"id"`
	Target    user.MiniResponse `json:"target"`
	Judge     user.MiniResponse `json:"judge"`
	Amount    int               `json:"amount"`
	CreatedAt time.Time         `json:"created_at"`
}

// mini falls back to a bare id when the user vanished between the write
// and the read.
func mini(users map[int64]user.User, id int64, urls user.AvatarURLs) user.MiniResponse {
	u, ok := users[id]
	if !ok {
		return user.MiniResponse{ID: id, Tier: string(user.TierBandana)}
	}
	return user.ToMiniResponse(&u, urls)
}

func ToEventResponse(
	e *Event,
	users map[int64]user.User,
	urls user.AvatarURLs,
) EventResponse {
	resp := EventResponse{
		ID:          e.ID,
		Target:      mini(users, e.TargetID, urls),
		Initiator:   mini(users, e.InitiatorID, urls),
		Reason:      e.Reason,
		Amount:      e.Amount,
		CreatedAt:   e.CreatedAt,
		ConfirmedAt: e.ConfirmedAt,
		Stage:       e.Stage(),
	}

	if e.ConfirmerID != nil {
		c := mini(users, *e.ConfirmerID, urls)
		resp.Confirmer = &c
	}

	return resp
}

func ToTakeResponse(
	t *Take,
	users map[int64]user.User,
	urls user.AvatarURLs,
) TakeResponse {
	return TakeResponse{
		ID:        t.ID,
		Target:    mini(users, t.TargetID, urls),
		Judge:     mini(users, t.JudgeID, urls),
		Amount:    t.Amount,
		CreatedAt: t.CreatedAt,
	}
}

func eventUserIDs(events []Event) []int64 {
	ids := make([]int64, 0, len(events)*3)
	for _, e := range events {
		ids = append(ids, e.TargetID, e.InitiatorID)
		if e.ConfirmerID != nil {
			ids = append(ids, *e.ConfirmerID)
		}
	}
	return ids
}
