package friends

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/fanout"
	friendsvc "github.com/chatbook/chatbook-backend/friends"
	"github.com/chatbook/chatbook-backend/notifications"
)

type dropBus struct{}

func (dropBus) Publish(uint, []byte) {}

type fixture struct {
	router *chi.Mux
	store  *friendsvc.MemStore
	alice  *model.User
	bob    *model.User
}

// Routes are registered without the session middleware; requests carry the
// acting user directly in the context, the way the middleware would.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := friendsvc.NewMemStore()
	alice := store.AddUser(&model.User{Username: "alice", Displayname: "Alice"})
	bob := store.AddUser(&model.User{Username: "bob", Displayname: "Bob"})

	svc := friendsvc.NewService(store, logger)
	notifs := notifications.NewService(notifications.NewMemStore(store), store, nil, logger)
	h := NewHandlers(logger, svc, fanout.New(notifs, dropBus{}, nil, logger))

	r := chi.NewRouter()
	r.Post("/friends/requests", h.sendRequest)
	r.Post("/friends/requests/{senderID}", h.handleRequest)
	r.Get("/friends/suggestions", h.suggestions)

	return &fixture{router: r, store: store, alice: alice, bob: bob}
}

func (f *fixture) do(method, target, body string, as *model.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), "user", as))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestSendRequestCreated(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/friends/requests", `{"recipient_id":2}`, f.alice)
	require.Equal(t, http.StatusCreated, rec.Code)

	var n model.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Equal(t, f.bob.ID, n.RecipientID)
	assert.Equal(t, model.NotificationFriendRequest, n.Type)

	out, _ := f.store.Outgoing(context.Background(), f.alice.ID)
	assert.Equal(t, []uint{f.bob.ID}, out)
}

func TestSendRequestErrorMapping(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated,
		f.do(http.MethodPost, "/friends/requests", `{"recipient_id":2}`, f.alice).Code)

	cases := []struct {
		name   string
		as     *model.User
		body   string
		status int
		reason string
	}{
		{"duplicate", f.alice, `{"recipient_id":2}`, http.StatusBadRequest, "duplicate_request"},
		{"self target", f.alice, `{"recipient_id":1}`, http.StatusBadRequest, "invalid_target"},
		{"unknown recipient", f.alice, `{"recipient_id":999}`, http.StatusNotFound, "not_found"},
		{"missing body field", f.alice, `{}`, http.StatusBadRequest, "bad_request"},
		{"malformed body", f.alice, `{"recipient_id":`, http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/friends/requests", tc.body, tc.as)
			assert.Equal(t, tc.status, rec.Code)
			var e struct {
				Reason string `json:"reason"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
			assert.Equal(t, tc.reason, e.Reason)
		})
	}
}

func TestHandleRequestAcceptAndDecline(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated,
		f.do(http.MethodPost, "/friends/requests", `{"recipient_id":2}`, f.alice).Code)

	rec := f.do(http.MethodPost, "/friends/requests/1", `{"action":"accept"}`, f.bob)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "friend request accepted")

	ok, _ := f.store.AreFriends(context.Background(), f.alice.ID, f.bob.ID)
	assert.True(t, ok)

	// Nothing pending anymore.
	rec = f.do(http.MethodPost, "/friends/requests/1", `{"action":"decline"}`, f.bob)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_such_request")
}

func TestHandleRequestDecline(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated,
		f.do(http.MethodPost, "/friends/requests", `{"recipient_id":2}`, f.alice).Code)

	rec := f.do(http.MethodPost, "/friends/requests/1", `{"action":"decline"}`, f.bob)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "friend request declined")

	ok, _ := f.store.AreFriends(context.Background(), f.alice.ID, f.bob.ID)
	assert.False(t, ok)
}

func TestHandleRequestValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/friends/requests/abc", `{"action":"accept"}`, f.bob)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusCreated,
		f.do(http.MethodPost, "/friends/requests", `{"recipient_id":2}`, f.alice).Code)
	rec = f.do(http.MethodPost, "/friends/requests/1", `{"action":"block"}`, f.bob)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_request")
}

func TestSuggestions(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated,
		f.do(http.MethodPost, "/friends/requests", `{"recipient_id":2}`, f.alice).Code)

	rec := f.do(http.MethodGet, "/friends/suggestions", "", f.alice)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []OutSuggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, f.bob.ID, out[0].ID)
	assert.True(t, out[0].RequestSent)
}
