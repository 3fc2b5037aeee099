// AngelaMos | 2026
// service_test.go

package push

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReassignsEndpoint(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, "pub")

	req := SubscribeRequest{
		Endpoint: " https://push.example/x ",
		Keys:     SubscriptionKeys{P256dh: "k1", Auth: "a1"},
	}
	first, err := svc.Subscribe(ctx, 1, req, "firefox")
	require.NoError(t, err)
	assert.Equal(t, "https://push.example/x", first.Endpoint)

	req.Keys = SubscriptionKeys{P256dh: "k2", Auth: "a2"}
	second, err := svc.Subscribe(ctx, 2, req, "chrome")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	n, err := svc.CountSubscriptions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	subs, err := repo.ListByUsers(ctx, []int64{2})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "k2", subs[0].P256dh)
	assert.Equal(t, "chrome", subs[0].UserAgent)
}

func TestUnsubscribeOnlyOwner(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(Subscription{UserID: 1, Endpoint: "https://push.example/x"})
	svc := NewService(repo, "pub")

	n, err := svc.Unsubscribe(ctx, 2, "https://push.example/x")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, repo.endpoints(), 1)

	n, err = svc.Unsubscribe(ctx, 1, "https://push.example/x")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Empty(t, repo.endpoints())

	n, err = svc.Unsubscribe(ctx, 1, "https://push.example/x")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVAPIDPublicKey(t *testing.T) {
	assert.Equal(t, "pub", NewService(newFakeRepo(), "pub").VAPIDPublicKey())
}
