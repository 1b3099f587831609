package friends

import "errors"

// Terminal protocol errors. Anything else coming out of the store is treated
// as transient and retried before surfacing as ErrTransientStore.
var (
	ErrInvalidTarget    = errors.New("friends: request targets self")
	ErrInvalidAction    = errors.New("friends: unknown action")
	ErrUserNotFound     = errors.New("friends: user not found")
	ErrAlreadyFriends   = errors.New("friends: already friends")
	ErrDuplicateRequest = errors.New("friends: request already pending")
	ErrNoSuchRequest    = errors.New("friends: no pending request")
	ErrTransientStore   = errors.New("friends: transient store failure")
)

func isTerminal(err error) bool {
	return errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrAlreadyFriends) ||
		errors.Is(err, ErrDuplicateRequest) ||
		errors.Is(err, ErrNoSuchRequest)
}
