package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"trivia-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions (engine, timer, subscribers) stay in a local map; they are
//     process-bound by nature.
//   - Every Put checkpoints the session snapshot as JSON under quiz:session:{id}
//     with a TTL, so progress can be inspected from outside the process and stale
//     keys expire on their own.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

// Put stores session and checkpoints it. A closed session is never stored again.
func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	if session.Closed() {
		s.mu.Unlock()
		return
	}
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	payload, err := json.Marshal(session.State())
	if err != nil {
		return
	}
	ctx := context.Background()
	key := SessionKey(session.ID())
	// best-effort checkpoint
	_ = s.client.Set(ctx, key, payload, s.ttl).Err()
	// Sessions are closed before their key is deleted, so a close that raced
	// with the SET above is visible here.
	if session.Closed() {
		_ = s.client.Del(ctx, key).Err()
	}
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), SessionKey(id)).Err()
}

func (s *SessionStore) Expire(cutoff time.Time) int {
	s.mu.Lock()
	expired := make([]string, 0)
	for id, session := range s.sessions {
		if session.UpdatedAt().Before(cutoff) {
			session.Close()
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		keys := make([]string, len(expired))
		for i, id := range expired {
			keys[i] = SessionKey(id)
		}
		_ = s.client.Del(context.Background(), keys...).Err()
	}
	return len(expired)
}

// SessionKey is the checkpoint key of a session.
func SessionKey(id string) string {
	return "quiz:session:" + id
}
