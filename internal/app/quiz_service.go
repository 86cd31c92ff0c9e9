package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"trivia-quiz-service/internal/domain"
)

// DefaultQuestionCount is used when a request does not ask for a specific amount.
const DefaultQuestionCount = 10

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-checkpointed, etc).
type SessionRepository interface {
	// Put stores session unless it is already closed.
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
	// Expire drops sessions idle since before cutoff and returns how many were removed.
	Expire(cutoff time.Time) int
}

// QuestionSource produces the ordered question set for a new session.
type QuestionSource interface {
	GetQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error)
}

// QuizService contains the quiz use cases: it owns live sessions, drives their
// timers and hands completed sessions to the ScoreBoard.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionSource
	board     *ScoreBoard
	logger    *slog.Logger
	timeLimit int
	tick      time.Duration
	newID     func() string
	now       func() time.Time

	base   context.Context
	cancel context.CancelFunc
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithTimeLimit sets the per-question budget in ticks.
func WithTimeLimit(ticks int) Option {
	return func(s *QuizService) {
		if ticks > 0 {
			s.timeLimit = ticks
		}
	}
}

// WithTickInterval sets the wall-clock length of one tick. Zero disables the timer loop.
func WithTickInterval(d time.Duration) Option {
	return func(s *QuizService) { s.tick = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

// WithIDGenerator is test-only for predictable session ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) { s.newID = newID }
}

func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(store SessionRepository, questions QuestionSource, board *ScoreBoard, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:  store,
		questions: questions,
		board:     board,
		logger:    slog.Default(),
		timeLimit: DefaultTimeLimit,
		tick:      time.Second,
		newID:     func() string { return uuid.NewString() },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.base, s.cancel = context.WithCancel(context.Background())
	return s
}

// Start loads questions and opens a new session on its first question.
// No session is created when the source fails.
func (s *QuizService) Start(ctx context.Context, req domain.QuestionRequest) (domain.SessionState, error) {
	req = withRequestDefaults(req)
	if err := domain.Validator().Struct(req); err != nil {
		return domain.SessionState{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	questions, err := s.questions.GetQuestions(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "load questions failed", "source", req.Source, "difficulty", req.Difficulty, "error", err)
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
		return domain.SessionState{}, err
	}

	engine := NewEngine(s.timeLimit)
	if err := engine.Start(questions); err != nil {
		return domain.SessionState{}, err
	}

	session := newSessionWithClock(s.newID(), engine, s.now)
	s.sessions.Put(session)
	s.startTimer(session)

	s.logger.InfoContext(ctx, "session started",
		"session_id", session.ID(),
		"source", req.Source,
		"questions", len(questions),
	)
	return session.State(), nil
}

// Submit answers the current question with the option at index selected.
func (s *QuizService) Submit(ctx context.Context, sessionID string, selected int) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, func(e *Engine) error {
		_, err := e.Submit(selected)
		return err
	})
}

// Skip resolves the current question without an answer.
func (s *QuizService) Skip(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, func(e *Engine) error {
		_, err := e.Skip()
		return err
	})
}

// Next moves past the current (locked) question, completing the session after the last one.
func (s *QuizService) Next(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, (*Engine).Advance)
}

// Previous moves back one question.
func (s *QuizService) Previous(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, (*Engine).Retreat)
}

// Finish completes the session with the answers recorded so far.
func (s *QuizService) Finish(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, (*Engine).FinishEarly)
}

// State returns the current snapshot of a session.
func (s *QuizService) State(_ context.Context, sessionID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return session.State(), nil
}

// Summary returns the results of a completed session.
func (s *QuizService) Summary(_ context.Context, sessionID string) (domain.Summary, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Summary{}, domain.ErrSessionNotFound
	}
	state := session.State()
	if !state.Completed {
		return domain.Summary{}, fmt.Errorf("%w: session is %s", domain.ErrInvalidState, state.Phase)
	}
	return s.board.Summarize(state), nil
}

// HighScores returns the persisted leaderboard.
func (s *QuizService) HighScores(ctx context.Context) []domain.HighScoreEntry {
	return s.board.Load(ctx)
}

// Subscribe returns a channel that receives a snapshot after every change, timer ticks included.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionState, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// End discards a session.
func (s *QuizService) End(ctx context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	// close first so a Put racing with this call is refused by the store
	session.Close()
	s.sessions.Delete(sessionID)
	s.logger.InfoContext(ctx, "session ended", "session_id", sessionID)
	return nil
}

// Sweep drops sessions idle for longer than maxIdle.
func (s *QuizService) Sweep(maxIdle time.Duration) int {
	return s.sessions.Expire(s.now().Add(-maxIdle))
}

// Close stops every timer loop started by the service.
func (s *QuizService) Close() {
	s.cancel()
}

func (s *QuizService) apply(ctx context.Context, sessionID string, fn func(*Engine) error) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}

	state, finished, err := session.apply(fn)
	if err != nil {
		return state, err
	}
	s.sessions.Put(session)

	if finished {
		s.finalize(ctx, session, state)
	}
	return state, nil
}

func (s *QuizService) finalize(ctx context.Context, session *Session, state domain.SessionState) {
	entry := s.board.Finalize(state)
	session.setEntry(entry)
	if _, err := s.board.Record(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "record high score failed", "session_id", session.ID(), "error", err)
		return
	}
	s.logger.InfoContext(ctx, "session completed",
		"session_id", session.ID(),
		"score", entry.Score,
		"answered", entry.AnsweredQuestions,
		"percentage", entry.Percentage,
	)
}

func (s *QuizService) startTimer(session *Session) {
	if s.tick <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(s.base)
	session.setTimerStop(cancel)

	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, expired, ok := session.tick()
				if !ok {
					return
				}
				if expired {
					s.sessions.Put(session)
					s.logger.Info("question timed out", "session_id", session.ID())
				}
			}
		}
	}()
}

func withRequestDefaults(req domain.QuestionRequest) domain.QuestionRequest {
	if req.Source == "" {
		req.Source = domain.SourceLocal
	}
	if req.Difficulty == "" {
		req.Difficulty = domain.DifficultyMixed
	}
	if req.Count == 0 {
		req.Count = DefaultQuestionCount
	}
	return req
}
