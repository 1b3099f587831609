package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/friends"
	"github.com/chatbook/chatbook-backend/mq"
	"github.com/chatbook/chatbook-backend/notifications"
	"github.com/chatbook/chatbook-backend/ws"
)

// Both realtime transports plug into the coordinator unchanged.
var (
	_ Bus = (*ws.Hub)(nil)
	_ Bus = (*mq.Bridge)(nil)
)

type recordedPublish struct {
	userID  uint
	payload []byte
}

type recordingBus struct {
	mu   sync.Mutex
	sent []recordedPublish
}

func (b *recordingBus) Publish(userID uint, message []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, recordedPublish{userID: userID, payload: message})
}

func (b *recordingBus) lastFor(t *testing.T, userID uint) []byte {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.sent) - 1; i >= 0; i-- {
		if b.sent[i].userID == userID {
			return b.sent[i].payload
		}
	}
	t.Fatalf("no frame published for user %d", userID)
	return nil
}

type failingStore struct {
	notifications.Store
}

func (failingStore) Create(context.Context, *model.Notification) error {
	return errors.New("disk full")
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newFixture(t *testing.T) (*friends.MemStore, *notifications.Service, uint, uint) {
	t.Helper()
	dir := friends.NewMemStore()
	alice := dir.AddUser(&model.User{Username: "alice", Displayname: "Alice"}).ID
	bob := dir.AddUser(&model.User{Username: "bob", Displayname: "Bob"}).ID
	notifs := notifications.NewService(notifications.NewMemStore(dir), dir, nil, testLogger())
	return dir, notifs, alice, bob
}

func TestDispatchPersistsBeforePublish(t *testing.T) {
	_, notifs, alice, bob := newFixture(t)
	bus := &recordingBus{}
	coord := New(notifs, bus, nil, testLogger())

	n, err := coord.Dispatch(context.Background(), &friends.Event{
		Type:        model.NotificationFriendRequest,
		SenderID:    alice,
		RecipientID: bob,
	})
	require.NoError(t, err)
	require.NotZero(t, n.ID)

	require.Len(t, bus.sent, 1)
	assert.Equal(t, bob, bus.sent[0].userID)

	var env struct {
		Event string             `json:"event"`
		Data  model.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(bus.sent[0].payload, &env))
	assert.Equal(t, EventNewNotification, env.Event)
	// The payload carries the assigned id, so the record was durable before
	// the publish went out.
	assert.Equal(t, n.ID, env.Data.ID)
	assert.Equal(t, "Alice sent you a friend request", env.Data.Message)

	listed, err := notifs.List(context.Background(), bob, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, n.ID, listed[0].ID)
}

func TestDispatchPersistFailureSkipsPublish(t *testing.T) {
	dir := friends.NewMemStore()
	alice := dir.AddUser(&model.User{Username: "alice"}).ID
	bob := dir.AddUser(&model.User{Username: "bob"}).ID
	notifs := notifications.NewService(failingStore{}, dir, nil, testLogger())
	bus := &recordingBus{}
	coord := New(notifs, bus, nil, testLogger())

	_, err := coord.Dispatch(context.Background(), &friends.Event{
		Type:        model.NotificationFriendRequest,
		SenderID:    alice,
		RecipientID: bob,
	})
	require.Error(t, err)
	assert.Empty(t, bus.sent, "no realtime event for a record that was never stored")
}

// Full request/accept exchange through the relationship service, the
// notification log, and the bus.
func TestRequestAcceptFanoutScenario(t *testing.T) {
	dir, notifs, alice, bob := newFixture(t)
	svc := friends.NewService(dir, testLogger())
	bus := &recordingBus{}
	coord := New(notifs, bus, nil, testLogger())
	ctx := context.Background()

	ev, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	_, err = coord.Dispatch(ctx, ev)
	require.NoError(t, err)

	var requested struct {
		Event string             `json:"event"`
		Data  model.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(bus.lastFor(t, bob), &requested))
	assert.Equal(t, EventNewNotification, requested.Event)
	assert.Equal(t, model.NotificationFriendRequest, requested.Data.Type)

	unread, err := notifs.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	ev, err = svc.HandleRequest(ctx, bob, alice, friends.ActionAccept)
	require.NoError(t, err)
	require.NotNil(t, ev)
	_, err = coord.Dispatch(ctx, ev)
	require.NoError(t, err)

	var accepted struct {
		Event string             `json:"event"`
		Data  model.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(bus.lastFor(t, alice), &accepted))
	assert.Equal(t, model.NotificationRequestAccepted, accepted.Data.Type)
	assert.Equal(t, "Bob accepted your friend request", accepted.Data.Message)

	ok, err := dir.AreFriends(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, ok)

	// Bob's original request notification survives the accept.
	listed, err := notifs.List(ctx, bob, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, model.NotificationFriendRequest, listed[0].Type)
}

func TestDispatchInvokesPusher(t *testing.T) {
	_, notifs, alice, bob := newFixture(t)
	bus := &recordingBus{}
	push := &recordingPusher{}
	coord := New(notifs, bus, push, testLogger())

	_, err := coord.Dispatch(context.Background(), &friends.Event{
		Type:        model.NotificationFriendRequest,
		SenderID:    alice,
		RecipientID: bob,
	})
	require.NoError(t, err)
	require.Len(t, push.calls, 1)
	assert.Equal(t, bob, push.calls[0].userID)
	assert.Equal(t, "Alice sent you a friend request", push.calls[0].body)
}

type recordingPusher struct {
	calls []struct {
		userID uint
		title  string
		body   string
	}
}

func (p *recordingPusher) Push(_ context.Context, userID uint, title, body string) {
	p.calls = append(p.calls, struct {
		userID uint
		title  string
		body   string
	}{userID, title, body})
}
