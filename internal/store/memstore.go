package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flemzord/backscroll/pkg/message"
)

// MemStore is a thread-safe, in-memory Store. It mirrors the SQLite
// implementation's ordering semantics so engine tests exercise the same
// contract without a database file.
type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	logs   map[string][]message.Message
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{logs: make(map[string][]message.Message)}
}

// Append persists a message and returns it with its storage key set.
func (s *MemStore) Append(_ context.Context, msg message.Message) (message.Message, error) {
	if err := msg.Validate(); err != nil {
		return message.Message{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.SequenceID != "" {
		for i := range s.logs[msg.ConversationID] {
			if s.logs[msg.ConversationID][i].SequenceID == msg.SequenceID {
				return message.Message{}, ErrDuplicateSequence
			}
		}
	}

	s.nextID++
	msg.ID = s.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.CreatedAt = msg.CreatedAt.UTC().Truncate(time.Microsecond)

	s.logs[msg.ConversationID] = append(s.logs[msg.ConversationID], msg)
	return msg, nil
}

// Recent returns at most limit messages, newest first. Ordering is
// re-derived from CreatedAt (ties broken by insertion order), not from
// append order alone.
func (s *MemStore) Recent(_ context.Context, conversationID string, limit int) ([]message.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[conversationID]
	out := make([]message.Message, len(log))
	copy(out, log)

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// BySequenceID looks a message up by its conversation-scoped sequence id.
func (s *MemStore) BySequenceID(_ context.Context, conversationID, sequenceID string) (message.Message, error) {
	if sequenceID == "" {
		return message.Message{}, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, msg := range s.logs[conversationID] {
		if msg.SequenceID == sequenceID {
			return msg, nil
		}
	}
	return message.Message{}, ErrNotFound
}

// Len returns the number of messages stored for a conversation.
func (s *MemStore) Len(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[conversationID])
}
