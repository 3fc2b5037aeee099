// AngelaMos | 2026
// dispatcher_test.go

package push

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]Subscription
	listed int
}

func newFakeRepo(subs ...Subscription) *fakeRepo {
	r := &fakeRepo{subs: make(map[int64]Subscription)}
	for _, s := range subs {
		r.nextID++
		s.ID = r.nextID
		r.subs[s.ID] = s
	}
	return r
}

func (r *fakeRepo) Upsert(_ context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.subs {
		if s.Endpoint == sub.Endpoint {
			sub.ID = id
			r.subs[id] = *sub
			return nil
		}
	}
	r.nextID++
	sub.ID = r.nextID
	r.subs[sub.ID] = *sub
	return nil
}

func (r *fakeRepo) DeleteForUser(_ context.Context, endpoint string, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.subs {
		if s.Endpoint == endpoint && s.UserID == userID {
			delete(r.subs, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeRepo) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
	return nil
}

func (r *fakeRepo) ListByUsers(_ context.Context, userIDs []int64) ([]Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listed++
	var out []Subscription
	for _, s := range r.subs {
		if slices.Contains(userIDs, s.UserID) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b Subscription) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r *fakeRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.subs)), nil
}

func (r *fakeRepo) endpoints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, s := range r.subs {
		out = append(out, s.Endpoint)
	}
	slices.Sort(out)
	return out
}

type sendResult struct {
	status int
	err    error
}

type fakeSender struct {
	mu       sync.Mutex
	results  map[string]sendResult
	messages map[string][]byte
}

func (s *fakeSender) Send(_ context.Context, sub Subscription, message []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.messages == nil {
		s.messages = make(map[string][]byte)
	}
	s.messages[sub.Endpoint] = message
	if res, ok := s.results[sub.Endpoint]; ok {
		return res.status, res.err
	}
	return http.StatusCreated, nil
}

func TestNotifyDelivers(t *testing.T) {
	repo := newFakeRepo(
		Subscription{UserID: 1, Endpoint: "https://push.example/a"},
		Subscription{UserID: 1, Endpoint: "https://push.example/b"},
		Subscription{UserID: 2, Endpoint: "https://push.example/c"},
		Subscription{UserID: 3, Endpoint: "https://push.example/d"},
	)
	sender := &fakeSender{}
	d := NewDispatcher(repo, sender, true)

	got := d.Notify(context.Background(), Payload{Title: "t", Body: "b", URL: "/"}, 1, 2)

	assert.Equal(t, map[int64]int{1: 2, 2: 1}, got)
	require.Contains(t, sender.messages, "https://push.example/a")
	assert.JSONEq(t, `{"title":"t","body":"b","url":"/"}`, string(sender.messages["https://push.example/a"]))
	assert.NotContains(t, sender.messages, "https://push.example/d")
}

func TestNotifyHandlesFailures(t *testing.T) {
	repo := newFakeRepo(
		Subscription{UserID: 1, Endpoint: "https://push.example/gone"},
		Subscription{UserID: 1, Endpoint: "https://push.example/missing"},
		Subscription{UserID: 1, Endpoint: "https://push.example/busy"},
		Subscription{UserID: 1, Endpoint: "https://push.example/down"},
		Subscription{UserID: 1, Endpoint: "https://push.example/ok"},
	)
	sender := &fakeSender{results: map[string]sendResult{
		"https://push.example/gone":    {status: http.StatusGone},
		"https://push.example/missing": {status: http.StatusNotFound},
		"https://push.example/busy":    {status: http.StatusTooManyRequests},
		"https://push.example/down":    {err: errors.New("connection refused")},
	}}
	d := NewDispatcher(repo, sender, true)

	got := d.Notify(context.Background(), Payload{Title: "t"}, 1)

	assert.Equal(t, 1, got[1])
	assert.Equal(t, []string{
		"https://push.example/busy",
		"https://push.example/down",
		"https://push.example/ok",
	}, repo.endpoints())
}

func TestNotifyDisabledOrEmpty(t *testing.T) {
	repo := newFakeRepo(Subscription{UserID: 1, Endpoint: "https://push.example/a"})
	sender := &fakeSender{}

	got := NewDispatcher(repo, sender, false).Notify(context.Background(), Payload{Title: "t"}, 1)
	assert.Empty(t, got)

	got = NewDispatcher(repo, sender, true).Notify(context.Background(), Payload{Title: "t"})
	assert.Empty(t, got)

	assert.Zero(t, repo.listed)
	assert.Empty(t, sender.messages)
}

func TestEndpointHost(t *testing.T) {
	assert.Equal(t, "fcm.googleapis.com", endpointHost("https://fcm.googleapis.com/fcm/send/abc"))
	assert.Equal(t, "invalid", endpointHost("not a url"))
}
