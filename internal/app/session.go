package app

import (
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Session hosts one Engine and serializes every event applied to it.
type Session struct {
	id        string
	createdAt time.Time
	now       func() time.Time

	mu          sync.RWMutex
	engine      *Engine
	updatedAt   time.Time
	finalized   bool
	entry       *domain.HighScoreEntry
	stopTimer   func()
	closed      bool
	subscribers map[chan domain.SessionState]struct{}
}

// NewSession wraps an engine for infrastructure layers and tests.
func NewSession(id string, engine *Engine) *Session {
	return newSessionWithClock(id, engine, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, engine *Engine, now func() time.Time) *Session {
	return newSessionWithClock(id, engine, now)
}

func newSessionWithClock(id string, engine *Engine, now func() time.Time) *Session {
	created := now()
	return &Session{
		id:          id,
		createdAt:   created,
		updatedAt:   created,
		now:         now,
		engine:      engine,
		stopTimer:   func() {},
		subscribers: make(map[chan domain.SessionState]struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// UpdatedAt is the time of the last user event.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// State returns the current snapshot.
func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Closed reports whether the session has been ended or expired.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Entry returns the leaderboard entry once the session has been finalized.
func (s *Session) Entry() (domain.HighScoreEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil {
		return domain.HighScoreEntry{}, false
	}
	return *s.entry, true
}

// apply runs fn against the engine. finished is true exactly once: on the call
// that moved the session into Completed.
func (s *Session) apply(fn func(*Engine) error) (state domain.SessionState, finished bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.snapshotLocked(), false, domain.ErrSessionNotFound
	}
	if err := fn(s.engine); err != nil {
		return s.snapshotLocked(), false, err
	}
	s.updatedAt = s.now()
	if s.engine.Completed() && !s.finalized {
		s.finalized = true
		finished = true
		s.stopTimer()
	}
	return s.broadcastLocked(), finished, nil
}

// tick advances the countdown by one unit. ok is false once the session no longer needs ticks.
func (s *Session) tick() (state domain.SessionState, expired, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.engine.Completed() {
		return s.snapshotLocked(), false, false
	}
	// nothing to count down while the current question is locked
	if !s.engine.timer.Active() {
		return s.snapshotLocked(), false, true
	}
	expired = s.engine.Tick()
	return s.broadcastLocked(), expired, true
}

func (s *Session) setEntry(entry domain.HighScoreEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = &entry
}

func (s *Session) setTimerStop(stop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer = stop
}

// Close stops the timer and releases all subscribers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimer()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	// buffered and still empty, so this cannot block; sending under the lock
	// keeps Close from closing ch first
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.SessionState {
	state := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// Drop the oldest pending snapshot; subscribers only care about the latest.
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return state
}

func (s *Session) snapshotLocked() domain.SessionState {
	state := s.engine.State()
	state.ID = s.id
	return state
}
