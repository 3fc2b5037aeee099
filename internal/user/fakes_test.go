// AngelaMos | 2026
// fakes_test.go

package user

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kallan/backend/internal/core"
)

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*User{}}
}

func (r *fakeRepo) seed(u User) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	} else if u.ID > r.nextID {
		r.nextID = u.ID
	}
	if u.Tier == "" {
		u.Tier = TierVest
	}
	stored := u
	r.users[u.ID] = &stored
	return &stored
}

func (r *fakeRepo) clone(u *User) *User {
	c := *u
	c.Permissions = slices.Clone(u.Permissions)
	return &c
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	r.nextID++
	u.ID = r.nextID
	u.DateJoined = time.Now()
	u.UpdatedAt = u.DateJoined
	r.users[u.ID] = r.clone(u)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return r.clone(u), nil
}

func (r *fakeRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return r.clone(u), nil
		}
	}
	return nil, fmt.Errorf("get user by username: %w", core.ErrNotFound)
}

func (r *fakeRepo) GetMany(_ context.Context, ids []int64) (map[int64]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int64]User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = *r.clone(u)
		}
	}
	return out, nil
}

func (r *fakeRepo) LockByID(ctx context.Context, id int64) (*User, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRepo) List(_ context.Context, params ListUsersParams) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []User
	for _, u := range r.users {
		if u.ID == params.ExcludeID {
			continue
		}
		if params.Search != "" &&
			!strings.Contains(strings.ToLower(u.Username), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, *r.clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *fakeRepo) ListActiveIDsExcept(_ context.Context, exclude ...int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []int64
	for id, u := range r.users {
		if u.IsActive && !slices.Contains(exclude, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *fakeRepo) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	stored.Tier = u.Tier
	stored.IsActive = u.IsActive
	stored.IsStaff = u.IsStaff
	stored.ForcePasswordReset = u.ForcePasswordReset
	return nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = hash
	u.ForcePasswordReset = false
	return nil
}

func (r *fakeRepo) SetAvatar(_ context.Context, id int64, path *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("set avatar: %w", core.ErrNotFound)
	}
	u.AvatarPath = path
	return nil
}

func (r *fakeRepo) IncrementTokenVersion(_ context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return 0, fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	u.TokenVersion++
	return u.TokenVersion, nil
}

func (r *fakeRepo) GrantPermission(_ context.Context, id int64, perm string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.users[id]
	if !slices.Contains(u.Permissions, perm) {
		u.Permissions = append(u.Permissions, perm)
	}
	return nil
}

func (r *fakeRepo) RevokePermission(_ context.Context, id int64, perm string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.users[id]
	u.Permissions = slices.DeleteFunc(u.Permissions, func(p string) bool { return p == perm })
	return nil
}
