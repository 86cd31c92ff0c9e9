package memory

import (
	"context"
	"sync"
)

// ScoreStore keeps leaderboard payloads for the lifetime of the process.
type ScoreStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{data: make(map[string][]byte)}
}

func (s *ScoreStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), payload...), nil
}

func (s *ScoreStore) Save(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), payload...)
	return nil
}
