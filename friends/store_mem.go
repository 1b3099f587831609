package friends

import (
	"context"
	"sort"
	"sync"

	"github.com/chatbook/chatbook-backend/db/model"
)

// MemStore keeps the full relationship state in process memory. It backs the
// test suites of every package that consumes relationship state; the pair
// invariants it enforces are the same as the postgres store's.
type MemStore struct {
	mu       sync.RWMutex
	seq      uint
	users    map[uint]*model.User
	friends  map[uint]map[uint]bool
	requests map[uint]map[uint]bool // sender -> recipients
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[uint]*model.User),
		friends:  make(map[uint]map[uint]bool),
		requests: make(map[uint]map[uint]bool),
	}
}

// AddUser registers an account, assigning an id when the record has none.
func (s *MemStore) AddUser(u *model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.seq++
		u.ID = s.seq
	} else if u.ID > s.seq {
		s.seq = u.ID
	}
	s.users[u.ID] = u
	return u
}

func (s *MemStore) UserExists(_ context.Context, id uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *MemStore) GetUser(_ context.Context, id uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) AreFriends(_ context.Context, a, b uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.friends[a][b], nil
}

func (s *MemStore) HasRequest(_ context.Context, from, to uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests[from][to], nil
}

func (s *MemStore) CreateRequest(_ context.Context, from, to uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requests[from] == nil {
		s.requests[from] = make(map[uint]bool)
	}
	s.requests[from][to] = true
	return nil
}

func (s *MemStore) DeleteRequest(_ context.Context, from, to uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests[from], to)
	return nil
}

func (s *MemStore) AcceptRequest(_ context.Context, from, to uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requests[from][to] {
		return ErrNoSuchRequest
	}
	delete(s.requests[from], to)
	if s.friends[from] == nil {
		s.friends[from] = make(map[uint]bool)
	}
	if s.friends[to] == nil {
		s.friends[to] = make(map[uint]bool)
	}
	s.friends[from][to] = true
	s.friends[to][from] = true
	return nil
}

func (s *MemStore) Friends(_ context.Context, id uint) ([]uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.friends[id]), nil
}

func (s *MemStore) Incoming(_ context.Context, id uint) ([]uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []uint
	for sender, recipients := range s.requests {
		if recipients[id] {
			ids = append(ids, sender)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemStore) Outgoing(_ context.Context, id uint) ([]uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.requests[id]), nil
}

func (s *MemStore) Suggestions(_ context.Context, viewer uint) ([]Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedKeys(s.users)
	sugs := make([]Suggestion, 0, len(ids))
	for _, id := range ids {
		if id == viewer {
			continue
		}
		sugs = append(sugs, Suggestion{
			User:        *s.users[id],
			RequestSent: s.requests[viewer][id],
		})
	}
	return sugs, nil
}

func sortedKeys[V any](m map[uint]V) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
