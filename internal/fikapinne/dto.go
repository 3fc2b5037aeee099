// AngelaMos | 2026
// dto.go

package fikapinne

import (
	"time"

	"github.com/kallan/backend/internal/user"
)

type GiveRequest struct {
	TargetID int64 `json:"target_id" validate:"required,min=1"`
}

type TakeRequest struct {
	TargetID int64 `json:"target_id" validate:"required,min=1"`
	Amount   int   `json:"amount"    validate:"required"`
}

type RecordResponse struct {
	ID        int64             `json:"id"`
	Target    user.MiniResponse `json:"target"`
	Judge     user.MiniResponse `json:"judge"`
	Amount    int               `json:"amount"`
	CreatedAt time.Time         `json:"created_at"`
}

func toRecordResponse(
	id, targetID, judgeID int64,
	amount int,
	createdAt time.Time,
	users map[int64]user.User,
	urls user.AvatarURLs,
) RecordResponse {
	return RecordResponse{
		ID:        id,
		Target:    mini(users, targetID, urls),
		Judge:     mini(users, judgeID, urls),
		Amount:    amount,
		CreatedAt: createdAt,
	}
}

func mini(users map[int64]user.User, id int64, urls user.AvatarURLs) user.MiniResponse {
	u, ok := users[id]
	if !ok {
		return user.MiniResponse{ID: id, Tier: string(user.TierBandana)}
	}
	return user.ToMiniResponse(&u, urls)
}
