package notifications

import (
	"context"
	"errors"

	"github.com/chatbook/chatbook-backend/db/model"
)

// ErrNotFound covers both a missing record and a record owned by someone
// else; callers cannot distinguish the two.
var ErrNotFound = errors.New("notifications: not found")

// Directory resolves sender display data at read time. Satisfied by the
// relationship stores.
type Directory interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
}

// Store is the append-only notification log, keyed by recipient. Every
// mutating method takes the recipient id and enforces ownership.
type Store interface {
	Create(ctx context.Context, n *model.Notification) error
	// List returns the recipient's records most-recent-first with sender
	// display fields resolved, at most limit of them.
	List(ctx context.Context, recipientID uint, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uint) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	Delete(ctx context.Context, id, recipientID uint) error
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
}
