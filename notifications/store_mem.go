package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chatbook/chatbook-backend/db/model"
)

// MemStore is the in-process notification log used by the test suites.
type MemStore struct {
	mu   sync.RWMutex
	seq  uint
	byID map[uint]*model.Notification
	dir  Directory
}

func NewMemStore(dir Directory) *MemStore {
	return &MemStore{byID: make(map[uint]*model.Notification), dir: dir}
}

func (s *MemStore) Create(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	n.ID = s.seq
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	cp.Sender = nil
	s.byID[n.ID] = &cp
	return nil
}

func (s *MemStore) List(ctx context.Context, recipientID uint, limit int) ([]model.Notification, error) {
	s.mu.RLock()
	var ns []model.Notification
	for _, n := range s.byID {
		if n.RecipientID == recipientID {
			ns = append(ns, *n)
		}
	}
	s.mu.RUnlock()
	sort.Slice(ns, func(i, j int) bool {
		if !ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].CreatedAt.After(ns[j].CreatedAt)
		}
		return ns[i].ID > ns[j].ID
	})
	if len(ns) > limit {
		ns = ns[:limit]
	}
	for i := range ns {
		if sender, err := s.dir.GetUser(ctx, ns[i].SenderID); err == nil {
			ns[i].Sender = sender
		}
	}
	return ns, nil
}

func (s *MemStore) MarkRead(ctx context.Context, id, recipientID uint) (*model.Notification, error) {
	s.mu.Lock()
	n, ok := s.byID[id]
	if !ok || n.RecipientID != recipientID {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	n.Read = true
	cp := *n
	s.mu.Unlock()
	if sender, err := s.dir.GetUser(ctx, cp.SenderID); err == nil {
		cp.Sender = sender
	}
	return &cp, nil
}

func (s *MemStore) MarkAllRead(_ context.Context, recipientID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.byID {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (s *MemStore) Delete(_ context.Context, id, recipientID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok || n.RecipientID != recipientID {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *MemStore) CountUnread(_ context.Context, recipientID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, n := range s.byID {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}
