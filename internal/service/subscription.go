package service

import (
	"sync"

	"pool_watch/internal/infra"
)

// Subscriptions tracks the chat sessions that receive divergence alerts.
// Membership is in-memory only and does not survive a restart. All mutation
// goes through this narrow API so interleaving stays auditable.
type Subscriptions struct {
	mu      sync.Mutex
	order   []int64
	members map[int64]struct{}
}

// NewSubscriptions creates an empty registry.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{members: make(map[int64]struct{})}
}

// Subscribe adds chatID. Idempotent: a second call reports already=true and
// leaves the registry unchanged.
func (s *Subscriptions) Subscribe(chatID int64) (already bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[chatID]; ok {
		return true
	}
	s.members[chatID] = struct{}{}
	s.order = append(s.order, chatID)
	infra.GlobalMetrics.SetSubscribers(int32(len(s.order)))
	return false
}

// Unsubscribe removes chatID. Removing an absent id is a no-op reported via
// wasSubscribed=false.
func (s *Subscriptions) Unsubscribe(chatID int64) (wasSubscribed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[chatID]; !ok {
		return false
	}
	delete(s.members, chatID)
	for i, id := range s.order {
		if id == chatID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	infra.GlobalMetrics.SetSubscribers(int32(len(s.order)))
	return true
}

// IsSubscribed reports membership.
func (s *Subscriptions) IsSubscribed(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[chatID]
	return ok
}

// ListAll returns the members in insertion order. The slice is a copy.
func (s *Subscriptions) ListAll() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}
