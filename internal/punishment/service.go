// AngelaMos | 2026
// service.go

package punishment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kallan/backend/internal/core"
	"github.com/kallan/backend/internal/push"
	"github.com/kallan/backend/internal/user"
)

const notifyURL = "/punishments"

// Users is the slice of the user directory the ledger reads.
type Users interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
	LockUser(ctx context.Context, id int64) (*user.User, error)
	GetUsers(ctx context.Context, ids []int64) (map[int64]user.User, error)
	ActiveUserIDsExcept(ctx context.Context, exclude ...int64) ([]int64, error)
	AvatarURLs() user.AvatarURLs
}

type Notifier interface {
	Notify(ctx context.Context, payload push.Payload, userIDs ...int64) map[int64]int
}

type Service struct {
	repo     Repository
	users    Users
	tx       core.Transactor
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

type ServiceConfig struct {
	Repo     Repository
	Users    Users
	Tx       core.Transactor
	Notifier Notifier
	Location *time.Location
	Now      func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:     cfg.Repo,
		users:    cfg.Users,
		tx:       cfg.Tx,
		notifier: cfg.Notifier,
		loc:      loc,
		now:      now,
	}
}

func (s *Service) Create(
	ctx context.Context,
	initiatorID int64,
	req CreateEventRequest,
) (*Event, error) {
	if req.TargetID == initiatorID {
		return nil, ErrSelfPunish
	}
	if !validAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}

	var event *Event
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		initiator, err := s.users.GetUser(ctx, initiatorID)
		if err != nil {
			return err
		}

		target, err := s.users.GetUser(ctx, req.TargetID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return ErrTargetNotFound
			}
			return err
		}

		e := &Event{
			TargetID:    target.ID,
			InitiatorID: initiator.ID,
			Reason:      req.Reason,
			Amount:      req.Amount,
		}
		if err := s.repo.CreateEvent(ctx, e); err != nil {
			return constraint(err)
		}

		reason := strings.TrimSpace(e.Reason)
		core.AfterCommit(ctx, func(ctx context.Context) {
			s.notifyCreated(ctx, initiator, target, e.Amount, reason)
		})

		event = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// Confirm ratifies a pending event. The event row lock is held from the
// read to the write, so of several concurrent confirms only the first
// succeeds and the rest see ErrAlreadyConfirmed.
func (s *Service) Confirm(
	ctx context.Context,
	confirmerID, eventID int64,
) (*Event, error) {
	var event *Event
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		e, err := s.repo.LockEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if e.IsConfirmed() {
			return ErrAlreadyConfirmed
		}
		if confirmerID == e.TargetID {
			return ErrTargetCannotConfirm
		}
		if confirmerID == e.InitiatorID {
			return ErrInitiatorCannotConfirm
		}

		parties, err := s.users.GetUsers(ctx, []int64{confirmerID, e.InitiatorID, e.TargetID})
		if err != nil {
			return err
		}
		confirmer, initiator := parties[confirmerID], parties[e.InitiatorID]

		if err := CheckConfirmTiers(initiator.Tier, confirmer.Tier); err != nil {
			return err
		}

		at := s.now()
		if err := s.repo.ConfirmEvent(ctx, e.ID, confirmerID, at); err != nil {
			if errors.Is(err, core.ErrConflict) {
				return ErrAlreadyConfirmed
			}
			return constraint(err)
		}
		e.ConfirmerID = &confirmerID
		e.ConfirmedAt = &at

		target := parties[e.TargetID]
		reason := strings.TrimSpace(e.Reason)
		core.AfterCommit(ctx, func(ctx context.Context) {
			s.notifyConfirmed(ctx, &confirmer, &initiator, &target, e.Amount, reason)
		})

		event = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (s *Service) Delete(ctx context.Context, actorID, eventID int64) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		e, err := s.repo.LockEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if e.IsConfirmed() {
			return ErrDeleteConfirmed
		}
		if e.InitiatorID != actorID {
			return ErrNotInitiator
		}

		initiator, err := s.users.GetUser(ctx, e.InitiatorID)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteEvent(ctx, e.ID); err != nil {
			return err
		}

		targetID, amount := e.TargetID, e.Amount
		reason := strings.TrimSpace(e.Reason)
		core.AfterCommit(ctx, func(ctx context.Context) {
			body := fmt.Sprintf("%s ångrade straffet (+%d).", initiator.Username, amount)
			s.notify(ctx, "Straff ångrat", withReason(body, reason), notifyURL, targetID)
		})

		return nil
	})
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Event, error) {
	if !filter.Pending && !filter.Confirmed {
		return nil, ErrNoStageSelected
	}
	if filter.Limit != nil && *filter.Limit < 1 {
		return nil, ErrInvalidLimit
	}

	return s.repo.ListEvents(ctx, filter)
}

// Stats reports the clamped balance and the amount confirmed during the
// current local week. Takes do not reduce the weekly figure.
func (s *Service) Stats(ctx context.Context, targetID int64) (*Stats, error) {
	from, to := WeekWindow(s.now(), s.loc)

	totals, err := s.repo.Totals(ctx, targetID, from, to)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TargetID:    targetID,
		TotalAmount: totals.Balance(),
		WeekAmount:  totals.ConfirmedInWindow,
	}, nil
}

// Take debits the target's confirmed balance. Takes against one target
// serialize on the target's user row.
func (s *Service) Take(
	ctx context.Context,
	judgeID int64,
	req TakeRequest,
) (*Take, error) {
	if req.TargetID == judgeID {
		return nil, ErrSelfTake
	}
	if !validAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}

	var take *Take
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		judge, err := s.users.GetUser(ctx, judgeID)
		if err != nil {
			return err
		}
		if !CanTake(judge.Tier) {
			return ErrOnlyVestsTake
		}

		target, err := s.users.LockUser(ctx, req.TargetID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return ErrTargetNotFound
			}
			return err
		}

		from, to := WeekWindow(s.now(), s.loc)
		totals, err := s.repo.Totals(ctx, target.ID, from, to)
		if err != nil {
			return err
		}

		if available := totals.Available(); req.Amount > available {
			return insufficientBalance(available)
		}

		t := &Take{
			TargetID: target.ID,
			JudgeID:  judge.ID,
			Amount:   req.Amount,
		}
		if err := s.repo.CreateTake(ctx, t); err != nil {
			return constraint(err)
		}

		core.AfterCommit(ctx, func(ctx context.Context) {
			body := fmt.Sprintf("%s strök %d straff från dig.", judge.Username, t.Amount)
			s.notify(ctx, "Straff strukna", body, "/", t.TargetID)
		})

		take = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return take, nil
}

func (s *Service) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountPending(ctx)
}

func (s *Service) EventResponses(
	ctx context.Context,
	events ...Event,
) ([]EventResponse, error) {
	users, err := s.users.GetUsers(ctx, eventUserIDs(events))
	if err != nil {
		return nil, err
	}

	urls := s.users.AvatarURLs()
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, ToEventResponse(&events[i], users, urls))
	}
	return out, nil
}

func (s *Service) TakeResponse(ctx context.Context, t *Take) (*TakeResponse, error) {
	users, err := s.users.GetUsers(ctx, []int64{t.TargetID, t.JudgeID})
	if err != nil {
		return nil, err
	}

	resp := ToTakeResponse(t, users, s.users.AvatarURLs())
	return &resp, nil
}

func (s *Service) notifyCreated(
	ctx context.Context,
	initiator, target *user.User,
	amount int,
	reason string,
) {
	s.notify(ctx,
		fmt.Sprintf("%s vill ge dig straff!", initiator.Username),
		withReason(fmt.Sprintf("Du fick %d straff.", amount), reason),
		notifyURL,
		target.ID,
	)

	others, err := s.users.ActiveUserIDsExcept(ctx, initiator.ID, target.ID)
	if err != nil {
		core.SetSpanError(ctx, err)
		return
	}

	s.notify(ctx,
		"Nytt straff-förslag",
		withReason(
			fmt.Sprintf("%s vill ge %s +%d straff.", initiator.Username, target.Username, amount),
			reason,
		),
		notifyURL,
		others...,
	)
}

func (s *Service) notifyConfirmed(
	ctx context.Context,
	confirmer, initiator, target *user.User,
	amount int,
	reason string,
) {
	s.notify(ctx,
		"Straff bekräftat",
		withReason(fmt.Sprintf("%s bekräftade straffet (+%d).", confirmer.Username, amount), reason),
		notifyURL,
		target.ID,
	)

	s.notify(ctx,
		"Ditt straff blev bekräftat",
		withReason(
			fmt.Sprintf("%s bekräftade straffet mot %s (+%d).",
				confirmer.Username, target.Username, amount),
			reason,
		),
		notifyURL,
		initiator.ID,
	)
}

func (s *Service) notify(
	ctx context.Context,
	title, body, url string,
	userIDs ...int64,
) {
	if s.notifier == nil || len(userIDs) == 0 {
		return
	}
	s.notifier.Notify(ctx, push.Payload{Title: title, Body: body, URL: url}, userIDs...)
}

func withReason(body, reason string) string {
	if reason == "" {
		return body
	}
	return body + " Anledning: " + reason
}

func constraint(err error) error {
	if errors.Is(err, core.ErrConstraint) {
		return ErrConstraint
	}
	return err
}
