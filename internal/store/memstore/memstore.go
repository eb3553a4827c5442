package memstore

import (
	"context"
	"roomrelay/internal/chat"
	"sync"
)

// Store keeps messages in process memory; everything is lost on exit.
type Store struct {
	mu     sync.RWMutex
	byRoom map[string][]chat.Message
}

var (
	_ chat.MessageStore  = (*Store)(nil)
	_ chat.HistoryReader = (*Store)(nil)
)

func New() *Store { return &Store{byRoom: make(map[string][]chat.Message)} }

func (s *Store) Append(_ context.Context, msg chat.Message) error {
	s.mu.Lock()
	s.byRoom[msg.Room] = append(s.byRoom[msg.Room], msg)
	s.mu.Unlock()
	return nil
}

func (s *Store) History(_ context.Context, room string, limit int) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.byRoom[room]
	start := 0
	if limit > 0 && limit < len(msgs) {
		start = len(msgs) - limit
	}
	out := make([]chat.Message, len(msgs)-start)
	copy(out, msgs[start:])
	return out, nil
}
