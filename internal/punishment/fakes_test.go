// AngelaMos | 2026
// fakes_test.go

package punishment

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/kallan/backend/internal/core"
	"github.com/kallan/backend/internal/push"
	"github.com/kallan/backend/internal/user"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[int64]user.User
}

func newFakeUsers(users ...user.User) *fakeUsers {
	f := &fakeUsers{users: make(map[int64]user.User)}
	for _, u := range users {
		if u.Username == "" {
			u.Username = fmt.Sprintf("user%d", u.ID)
		}
		u.IsActive = true
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetUser(_ context.Context, id int64) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return &u, nil
}

func (f *fakeUsers) LockUser(ctx context.Context, id int64) (*user.User, error) {
	return f.GetUser(ctx, id)
}

func (f *fakeUsers) GetUsers(_ context.Context, ids []int64) (map[int64]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]user.User, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *fakeUsers) ActiveUserIDsExcept(_ context.Context, exclude ...int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id, u := range f.users {
		if u.IsActive && !slices.Contains(exclude, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *fakeUsers) AvatarURLs() user.AvatarURLs {
	return nil
}

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]Event
	takes  []Take
	now    func() time.Time
}

func newFakeRepo(now func() time.Time) *fakeRepo {
	return &fakeRepo{events: make(map[int64]Event), now: now}
}

func (r *fakeRepo) CreateEvent(_ context.Context, e *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	e.CreatedAt = r.now()
	r.events[e.ID] = *e
	return nil
}

func (r *fakeRepo) GetEvent(_ context.Context, id int64) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, fmt.Errorf("get punishment event: %w", core.ErrNotFound)
	}
	return &e, nil
}

func (r *fakeRepo) LockEvent(ctx context.Context, id int64) (*Event, error) {
	return r.GetEvent(ctx, id)
}

func (r *fakeRepo) ConfirmEvent(_ context.Context, id, confirmerID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.ConfirmerID != nil {
		return fmt.Errorf("confirm punishment event: %w", core.ErrConflict)
	}
	e.ConfirmerID = &confirmerID
	e.ConfirmedAt = &at
	r.events[id] = e
	return nil
}

func (r *fakeRepo) DeleteEvent(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.ConfirmerID != nil {
		return fmt.Errorf("delete punishment event: %w", core.ErrNotFound)
	}
	delete(r.events, id)
	return nil
}

func (r *fakeRepo) ListEvents(_ context.Context, filter ListFilter) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.IsConfirmed() && !filter.Confirmed || !e.IsConfirmed() && !filter.Pending {
			continue
		}
		if filter.TargetID != nil && e.TargetID != *filter.TargetID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit != nil && len(out) > *filter.Limit {
		out = out[:*filter.Limit]
	}
	return out, nil
}

func (r *fakeRepo) CreateTake(_ context.Context, t *Take) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = r.now()
	r.takes = append(r.takes, *t)
	return nil
}

func (r *fakeRepo) Totals(_ context.Context, targetID int64, from, to time.Time) (Totals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var totals Totals
	for _, e := range r.events {
		if e.TargetID != targetID || !e.IsConfirmed() {
			continue
		}
		totals.Confirmed += e.Amount
		if !e.ConfirmedAt.Before(from) && e.ConfirmedAt.Before(to) {
			totals.ConfirmedInWindow += e.Amount
		}
	}
	for _, t := range r.takes {
		if t.TargetID == targetID {
			totals.Taken += t.Amount
		}
	}
	return totals, nil
}

func (r *fakeRepo) CountPending(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.events {
		if !e.IsConfirmed() {
			n++
		}
	}
	return n, nil
}

// seedConfirmed stores an already confirmed event.
func (r *fakeRepo) seedConfirmed(targetID, initiatorID, confirmerID int64, amount int, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.events[r.nextID] = Event{
		ID:          r.nextID,
		TargetID:    targetID,
		InitiatorID: initiatorID,
		ConfirmerID: &confirmerID,
		Amount:      amount,
		CreatedAt:   at,
		ConfirmedAt: &at,
	}
}

type sentNotice struct {
	payload push.Payload
	userIDs []int64
	commits int
}

type fakeNotifier struct {
	mu   sync.Mutex
	tx   interface{ Commits() int }
	sent []sentNotice
}

func (n *fakeNotifier) Notify(_ context.Context, payload push.Payload, userIDs ...int64) map[int64]int {
	n.mu.Lock()
	defer n.mu.Unlock()
	commits := 0
	if n.tx != nil {
		commits = n.tx.Commits()
	}
	n.sent = append(n.sent, sentNotice{payload: payload, userIDs: userIDs, commits: commits})
	return nil
}

func (n *fakeNotifier) notices() []sentNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.sent)
}
