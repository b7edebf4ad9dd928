package storage

import (
	"context"
	"sync"

	"PairChat/service/chat"
)

// MemoryStore is an in-process MessageStore: the dev fallback when Mongo is
// not reachable, and the store unit tests run against.
type MemoryStore struct {
	mu   sync.Mutex
	msgs []*chat.StoredMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, msg *chat.StoredMessage) (*chat.StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *msg
	s.msgs = append(s.msgs, &cp)
	// the caller gets its own copy; the stored record must not alias it
	ret := cp
	return &ret, nil
}

func (s *MemoryStore) History(_ context.Context, userA, userB string, limit int64) ([]*chat.StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*chat.StoredMessage
	for _, m := range s.msgs {
		if (m.Sender == userA && m.Receiver == userB) || (m.Sender == userB && m.Receiver == userA) {
			cp := *m
			out = append(out, &cp)
			if limit > 0 && int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}
