package notifications

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/metrics"
)

// DefaultLimit bounds List when the caller does not pick a page size.
const DefaultLimit = 20

type CreateParams struct {
	RecipientID uint
	SenderID    uint
	Type        string
	// Message is stored as given; empty renders the default text for Type.
	Message   string
	RelatedID uint
}

// Service owns the notification log. Records are immutable except for the
// read flag, and every per-record operation is checked against the recipient.
type Service struct {
	store  Store
	dir    Directory
	cache  *Cache
	logger *logrus.Logger
}

func NewService(store Store, dir Directory, cache *Cache, logger *logrus.Logger) *Service {
	return &Service{store: store, dir: dir, cache: cache, logger: logger}
}

// Create persists an unread record and returns it with sender display fields
// resolved. Sender data is looked up, never copied into relationship state.
func (s *Service) Create(ctx context.Context, p CreateParams) (*model.Notification, error) {
	sender, err := s.dir.GetUser(ctx, p.SenderID)
	if err != nil {
		return nil, err
	}
	msg := p.Message
	if msg == "" {
		msg = defaultMessage(p.Type, sender)
	}
	n := &model.Notification{
		RecipientID: p.RecipientID,
		SenderID:    p.SenderID,
		Type:        p.Type,
		Message:     msg,
		RelatedID:   p.RelatedID,
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}
	n.Sender = sender
	s.cache.Invalidate(p.RecipientID)
	metrics.NotificationsCreated.Inc()
	return n, nil
}

func (s *Service) List(ctx context.Context, recipientID uint, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.store.List(ctx, recipientID, limit)
}

// MarkRead flips the read flag. Already-read records succeed as a no-op;
// records owned by someone else surface as ErrNotFound.
func (s *Service) MarkRead(ctx context.Context, id, recipientID uint) (*model.Notification, error) {
	n, err := s.store.MarkRead(ctx, id, recipientID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(recipientID)
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	count, err := s.store.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(recipientID, 0)
	return count, nil
}

func (s *Service) Delete(ctx context.Context, id, recipientID uint) error {
	if err := s.store.Delete(ctx, id, recipientID); err != nil {
		return err
	}
	s.cache.Invalidate(recipientID)
	return nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	if count, ok := s.cache.Get(recipientID); ok {
		return count, nil
	}
	count, err := s.store.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(recipientID, count)
	return count, nil
}

func defaultMessage(typ string, sender *model.User) string {
	name := sender.Displayname
	if name == "" {
		name = sender.Username
	}
	switch typ {
	case model.NotificationFriendRequest:
		return name + " sent you a friend request"
	case model.NotificationRequestAccepted:
		return name + " accepted your friend request"
	}
	return name
}
