package notifications

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/friends"
)

func newTestService(t *testing.T) (*Service, uint, uint) {
	t.Helper()
	dir := friends.NewMemStore()
	alice := dir.AddUser(&model.User{Username: "alice", Displayname: "Alice"}).ID
	bob := dir.AddUser(&model.User{Username: "bob", Displayname: "Bob"}).ID
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(NewMemStore(dir), dir, nil, logger)
	return svc, alice, bob
}

func TestCreateResolvesSenderAndRendersMessage(t *testing.T) {
	svc, alice, bob := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateParams{
		RecipientID: bob,
		SenderID:    alice,
		Type:        model.NotificationFriendRequest,
	})
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.False(t, n.Read)
	assert.Equal(t, "Alice sent you a friend request", n.Message)
	require.NotNil(t, n.Sender)
	assert.Equal(t, "alice", n.Sender.Username)

	n, err = svc.Create(ctx, CreateParams{
		RecipientID: alice,
		SenderID:    bob,
		Type:        model.NotificationRequestAccepted,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob accepted your friend request", n.Message)
}

func TestCreateUnknownSender(t *testing.T) {
	svc, _, bob := newTestService(t)
	_, err := svc.Create(context.Background(), CreateParams{
		RecipientID: bob,
		SenderID:    999,
		Type:        model.NotificationFriendRequest,
	})
	assert.Error(t, err)
}

func TestListNewestFirstWithTieBreakOnID(t *testing.T) {
	svc, alice, bob := newTestService(t)
	ctx := context.Background()

	var created []uint
	for i := 0; i < 3; i++ {
		n, err := svc.Create(ctx, CreateParams{
			RecipientID: bob,
			SenderID:    alice,
			Type:        model.NotificationFriendRequest,
		})
		require.NoError(t, err)
		created = append(created, n.ID)
	}

	ns, err := svc.List(ctx, bob, 0)
	require.NoError(t, err)
	require.Len(t, ns, 3)
	assert.Equal(t, created[2], ns[0].ID)
	assert.Equal(t, created[1], ns[1].ID)
	assert.Equal(t, created[0], ns[2].ID)
	for _, n := range ns {
		require.NotNil(t, n.Sender)
		assert.Equal(t, "alice", n.Sender.Username)
	}
}

func TestListAppliesDefaultLimit(t *testing.T) {
	svc, alice, bob := newTestService(t)
	ctx := context.Background()

	for i := 0; i < DefaultLimit+5; i++ {
		_, err := svc.Create(ctx, CreateParams{
			RecipientID: bob,
			SenderID:    alice,
			Type:        model.NotificationFriendRequest,
		})
		require.NoError(t, err)
	}

	ns, err := svc.List(ctx, bob, 0)
	require.NoError(t, err)
	assert.Len(t, ns, DefaultLimit)

	ns, err = svc.List(ctx, bob, 2)
	require.NoError(t, err)
	assert.Len(t, ns, 2)
}

func TestMarkReadChecksOwnership(t *testing.T) {
	svc, alice, bob := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateParams{
		RecipientID: bob,
		SenderID:    alice,
		Type:        model.NotificationFriendRequest,
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, n.ID, alice)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.MarkRead(ctx, n.ID, bob)
	require.NoError(t, err)
	assert.True(t, got.Read)

	// Re-reading an already-read record is a no-op, not an error.
	got, err = svc.MarkRead(ctx, n.ID, bob)
	require.NoError(t, err)
	assert.True(t, got.Read)
}

func TestMarkAllReadZeroesUnreadCount(t *testing.T) {
	svc, alice, bob := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateParams{
			RecipientID: bob,
			SenderID:    alice,
			Type:        model.NotificationFriendRequest,
		})
		require.NoError(t, err)
	}

	count, err := svc.MarkAllRead(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	unread, err := svc.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}

func TestDeleteChecksOwnership(t *testing.T) {
	svc, alice, bob := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateParams{
		RecipientID: bob,
		SenderID:    alice,
		Type:        model.NotificationFriendRequest,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, n.ID, alice), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, n.ID, bob))
	assert.ErrorIs(t, svc.Delete(ctx, n.ID, bob), ErrNotFound)

	ns, err := svc.List(ctx, bob, 0)
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestUnreadCountTracksReadFlag(t *testing.T) {
	svc, alice, bob := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateParams{
		RecipientID: bob,
		SenderID:    alice,
		Type:        model.NotificationFriendRequest,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateParams{
		RecipientID: bob,
		SenderID:    alice,
		Type:        model.NotificationRequestAccepted,
	})
	require.NoError(t, err)

	unread, err := svc.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	_, err = svc.MarkRead(ctx, first.ID, bob)
	require.NoError(t, err)

	unread, err = svc.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}
