package friends

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/metrics"
)

const (
	ActionAccept  = "accept"
	ActionDecline = "decline"

	maxAttempts = 3
)

// Event describes a completed protocol transition that needs fanout.
// SenderID is the account whose action produced it, RecipientID the account
// to notify. Declines produce no event.
type Event struct {
	Type        string // model.NotificationFriendRequest or model.NotificationRequestAccepted
	SenderID    uint
	RecipientID uint
}

// Service executes the request/accept/decline protocol against a Store.
// Every mutation on a pair runs under that pair's mutex, so concurrent
// operations on the same two accounts serialize and the invariant "at most
// one of {friends, a->b pending, b->a pending}" holds at every step.
type Service struct {
	store  Store
	locks  *pairLocks
	logger *logrus.Logger
}

func NewService(store Store, logger *logrus.Logger) *Service {
	return &Service{store: store, locks: newPairLocks(), logger: logger}
}

// SendRequest records senderID's intent to befriend recipientID.
//
// Mutual-race tie-break: if recipientID already has a pending request to
// senderID, the call is an implicit accept — both become friends, the pending
// edge is cleared, and the original requester gets the accepted event. The
// rule is deterministic: whoever writes second completes the handshake.
func (s *Service) SendRequest(ctx context.Context, senderID, recipientID uint) (*Event, error) {
	if senderID == recipientID {
		return nil, ErrInvalidTarget
	}
	unlock := s.locks.lock(senderID, recipientID)
	defer unlock()

	for _, id := range []uint{senderID, recipientID} {
		ok, err := s.store.UserExists(ctx, id)
		if err != nil {
			return nil, wrapTransient(err)
		}
		if !ok {
			return nil, ErrUserNotFound
		}
	}
	if ok, err := s.store.AreFriends(ctx, senderID, recipientID); err != nil {
		return nil, wrapTransient(err)
	} else if ok {
		return nil, ErrAlreadyFriends
	}
	if ok, err := s.store.HasRequest(ctx, senderID, recipientID); err != nil {
		return nil, wrapTransient(err)
	} else if ok {
		metrics.FriendTransitions.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicateRequest
	}

	if ok, err := s.store.HasRequest(ctx, recipientID, senderID); err != nil {
		return nil, wrapTransient(err)
	} else if ok {
		if err := s.retry(func() error {
			return s.store.AcceptRequest(ctx, recipientID, senderID)
		}); err != nil {
			return nil, err
		}
		metrics.FriendTransitions.WithLabelValues("auto_accepted").Inc()
		return &Event{
			Type:        model.NotificationRequestAccepted,
			SenderID:    senderID,
			RecipientID: recipientID,
		}, nil
	}

	if err := s.retry(func() error {
		return s.store.CreateRequest(ctx, senderID, recipientID)
	}); err != nil {
		return nil, err
	}
	metrics.FriendTransitions.WithLabelValues("sent").Inc()
	return &Event{
		Type:        model.NotificationFriendRequest,
		SenderID:    senderID,
		RecipientID: recipientID,
	}, nil
}

// HandleRequest resolves the pending senderID->recipientID request. Accepting
// returns an accepted event addressed to the original sender; declining is
// silent and returns a nil event.
func (s *Service) HandleRequest(ctx context.Context, recipientID, senderID uint, action string) (*Event, error) {
	if action != ActionAccept && action != ActionDecline {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	unlock := s.locks.lock(senderID, recipientID)
	defer unlock()

	if ok, err := s.store.HasRequest(ctx, senderID, recipientID); err != nil {
		return nil, wrapTransient(err)
	} else if !ok {
		return nil, ErrNoSuchRequest
	}

	if action == ActionDecline {
		if err := s.retry(func() error {
			return s.store.DeleteRequest(ctx, senderID, recipientID)
		}); err != nil {
			return nil, err
		}
		metrics.FriendTransitions.WithLabelValues("declined").Inc()
		return nil, nil
	}

	if err := s.retry(func() error {
		return s.store.AcceptRequest(ctx, senderID, recipientID)
	}); err != nil {
		return nil, err
	}
	metrics.FriendTransitions.WithLabelValues("accepted").Inc()
	return &Event{
		Type:        model.NotificationRequestAccepted,
		SenderID:    recipientID,
		RecipientID: senderID,
	}, nil
}

// Suggestions lists every account except the viewer, flagging candidates the
// viewer already requested. Pure read, no lock.
func (s *Service) Suggestions(ctx context.Context, viewerID uint) ([]Suggestion, error) {
	sugs, err := s.store.Suggestions(ctx, viewerID)
	if err != nil {
		return nil, wrapTransient(err)
	}
	return sugs, nil
}

// retry reruns fn on transient store failures with a short backoff, still
// inside the caller's pair lock. Terminal protocol errors pass through.
func (s *Service) retry(fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil || isTerminal(err) {
			return err
		}
		s.logger.WithError(err).WithField("attempt", attempt).Warn("relationship store write failed")
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	return wrapTransient(err)
}

func wrapTransient(err error) error {
	return fmt.Errorf("%w: %v", ErrTransientStore, err)
}
