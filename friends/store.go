package friends

import (
	"context"

	"github.com/chatbook/chatbook-backend/db/model"
)

// Suggestion is one candidate account for the viewer, with a hint whether the
// viewer already has an outgoing pending request to it.
type Suggestion struct {
	User        model.User
	RequestSent bool
}

// Store holds the authoritative relationship state: symmetric friend edges
// and directed pending requests. Methods that touch both sides of a pair
// (AcceptRequest) must apply both writes atomically, or fail with neither
// applied. The service serializes callers per pair, so implementations only
// need internal consistency, not cross-call ordering.
type Store interface {
	UserExists(ctx context.Context, id uint) (bool, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)

	AreFriends(ctx context.Context, a, b uint) (bool, error)
	HasRequest(ctx context.Context, from, to uint) (bool, error)

	CreateRequest(ctx context.Context, from, to uint) error
	DeleteRequest(ctx context.Context, from, to uint) error
	// AcceptRequest removes the from->to pending edge and inserts the
	// friendship rows in both directions, atomically.
	AcceptRequest(ctx context.Context, from, to uint) error

	Friends(ctx context.Context, id uint) ([]uint, error)
	Incoming(ctx context.Context, id uint) ([]uint, error)
	Outgoing(ctx context.Context, id uint) ([]uint, error)
	Suggestions(ctx context.Context, viewer uint) ([]Suggestion, error)
}
