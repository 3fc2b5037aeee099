// AngelaMos | 2026
// service.go

package fikapinne

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kallan/backend/internal/core"
	"github.com/kallan/backend/internal/push"
	"github.com/kallan/backend/internal/user"
)

const notifyURL = "/"

type Users interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
	LockUser(ctx context.Context, id int64) (*user.User, error)
	GetUsers(ctx context.Context, ids []int64) (map[int64]user.User, error)
	AvatarURLs() user.AvatarURLs
}

type Notifier interface {
	Notify(ctx context.Context, payload push.Payload, userIDs ...int64) map[int64]int
}

type ServiceConfig struct {
	Repo     Repository
	Users    Users
	Tx       core.Transactor
	Notifier Notifier
	Location *time.Location
	Now      func() time.Time
}

type Service struct {
	repo     Repository
	users    Users
	tx       core.Transactor
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		repo:     cfg.Repo,
		users:    cfg.Users,
		tx:       cfg.Tx,
		notifier: cfg.Notifier,
		loc:      cfg.Location,
		now:      cfg.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Give(ctx context.Context, judgeID, targetID int64) (*Gift, error) {
	var gift *Gift
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		judge, err := s.authorize(ctx, judgeID)
		if err != nil {
			return err
		}
		if targetID == judgeID {
			return ErrSelfGive
		}

		target, err := s.users.GetUser(ctx, targetID)
		if err != nil {
			return targetErr(err)
		}

		g := &Gift{TargetID: target.ID, JudgeID: judge.ID}
		if err := s.repo.CreateGift(ctx, g); err != nil {
			return constraint(err)
		}

		core.AfterCommit(ctx, func(ctx context.Context) {
			s.notify(ctx,
				"Du fick en fikapinne ☕️",
				fmt.Sprintf("%s gav dig en fikapinne.", judge.Username),
				g.TargetID,
			)
		})

		gift = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	return gift, nil
}

// Take debits the target's fikapinnar. Concurrent takes against one
// target serialize on the target's user row.
func (s *Service) Take(ctx context.Context, judgeID int64, req TakeRequest) (*Take, error) {
	var take *Take
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		judge, err := s.authorize(ctx, judgeID)
		if err != nil {
			return err
		}
		if req.TargetID == judgeID {
			return ErrSelfTake
		}
		if !ValidTakeAmount(req.Amount) {
			return ErrInvalidAmount
		}

		target, err := s.users.LockUser(ctx, req.TargetID)
		if err != nil {
			return targetErr(err)
		}

		from, to := MonthWindow(s.now(), s.loc)
		totals, err := s.repo.Totals(ctx, target.ID, from, to)
		if err != nil {
			return err
		}

		if current := totals.Balance(); req.Amount > current {
			return insufficientBalance(current)
		}

		t := &Take{TargetID: target.ID, JudgeID: judge.ID, Amount: req.Amount}
		if err := s.repo.CreateTake(ctx, t); err != nil {
			return constraint(err)
		}

		core.AfterCommit(ctx, func(ctx context.Context) {
			s.notify(ctx,
				"Fikapinnar borttagna",
				fmt.Sprintf("%s tog bort %d fikapinnar.", judge.Username, t.Amount),
				t.TargetID,
			)
		})

		take = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return take, nil
}

// Stats reports the clamped balance and the number given during the
// current calendar month. Takes do not reduce the monthly figure.
func (s *Service) Stats(ctx context.Context, targetID int64) (*Stats, error) {
	from, to := MonthWindow(s.now(), s.loc)

	totals, err := s.repo.Totals(ctx, targetID, from, to)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TargetID:    targetID,
		TotalAmount: totals.Balance(),
		MonthAmount: totals.GivenInWindow,
	}, nil
}

func (s *Service) GiftResponse(ctx context.Context, g *Gift) (*RecordResponse, error) {
	return s.record(ctx, g.ID, g.TargetID, g.JudgeID, 1, g.CreatedAt)
}

func (s *Service) TakeResponse(ctx context.Context, t *Take) (*RecordResponse, error) {
	return s.record(ctx, t.ID, t.TargetID, t.JudgeID, t.Amount, t.CreatedAt)
}

func (s *Service) record(
	ctx context.Context,
	id, targetID, judgeID int64,
	amount int,
	createdAt time.Time,
) (*RecordResponse, error) {
	users, err := s.users.GetUsers(ctx, []int64{targetID, judgeID})
	if err != nil {
		return nil, err
	}

	resp := toRecordResponse(id, targetID, judgeID, amount, createdAt, users, s.users.AvatarURLs())
	return &resp, nil
}

func (s *Service) authorize(ctx context.Context, judgeID int64) (*user.User, error) {
	judge, err := s.users.GetUser(ctx, judgeID)
	if err != nil {
		return nil, err
	}
	if !judge.HasPermission(user.PermManageFikapinnar) {
		return nil, ErrNotAllowed
	}
	return judge, nil
}

func (s *Service) notify(ctx context.Context, title, body string, userIDs ...int64) {
	if s.notifier == nil || len(userIDs) == 0 {
		return
	}
	s.notifier.Notify(ctx, push.Payload{Title: title, Body: body, URL: notifyURL}, userIDs...)
}

func targetErr(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return ErrTargetNotFound
	}
	return err
}

func constraint(err error) error {
	if errors.Is(err, core.ErrConstraint) {
		return ErrConstraint
	}
	return err
}
