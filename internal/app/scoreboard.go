package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

const (
	// DefaultScoresKey is the record the leaderboard is persisted under.
	DefaultScoresKey = "quizHighScores"
	// DefaultScoresLimit caps the persisted leaderboard.
	DefaultScoresLimit = 10
)

// ScoreStore persists a single opaque payload per key (in-memory, Redis, Postgres).
// Load returns a nil payload and no error when the key does not exist.
type ScoreStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// ScoreBoard finalizes completed sessions and keeps the bounded, ranked history.
type ScoreBoard struct {
	store  ScoreStore
	key    string
	limit  int
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

// ScoreBoardOption customizes a ScoreBoard.
type ScoreBoardOption func(*ScoreBoard)

func WithScoresKey(key string) ScoreBoardOption {
	return func(b *ScoreBoard) {
		if key != "" {
			b.key = key
		}
	}
}

func WithScoresLimit(limit int) ScoreBoardOption {
	return func(b *ScoreBoard) {
		if limit > 0 {
			b.limit = limit
		}
	}
}

// WithScoreClock is used by tests for deterministic dates and timestamps.
func WithScoreClock(now func() time.Time) ScoreBoardOption {
	return func(b *ScoreBoard) { b.now = now }
}

func WithScoreLogger(logger *slog.Logger) ScoreBoardOption {
	return func(b *ScoreBoard) { b.logger = logger }
}

func NewScoreBoard(store ScoreStore, opts ...ScoreBoardOption) *ScoreBoard {
	b := &ScoreBoard{
		store:  store,
		key:    DefaultScoresKey,
		limit:  DefaultScoresLimit,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Finalize builds the leaderboard entry for a session. Only answered questions count
// towards the percentage, so a session finished early is not penalized for the rest.
func (b *ScoreBoard) Finalize(state domain.SessionState) domain.HighScoreEntry {
	answered := len(state.Answers)
	now := b.now()
	return domain.HighScoreEntry{
		Score:             state.Score,
		TotalQuestions:    len(state.Questions),
		AnsweredQuestions: answered,
		Percentage:        percentage(state.Score, answered),
		Date:              now.Format("1/2/2006"),
		Timestamp:         now.UnixMilli(),
	}
}

// Record inserts entry into the persisted leaderboard and returns the new ranking.
func (b *ScoreBoard) Record(ctx context.Context, entry domain.HighScoreEntry) ([]domain.HighScoreEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := append(b.load(ctx), entry)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})
	if len(entries) > b.limit {
		entries = entries[:b.limit]
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode high scores: %w", err)
	}
	if err := b.store.Save(ctx, b.key, payload); err != nil {
		return nil, fmt.Errorf("save high scores: %w", err)
	}
	return entries, nil
}

// Load returns the persisted leaderboard. Missing or unreadable data is an empty board.
func (b *ScoreBoard) Load(ctx context.Context) []domain.HighScoreEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

func (b *ScoreBoard) load(ctx context.Context) []domain.HighScoreEntry {
	payload, err := b.store.Load(ctx, b.key)
	if err != nil {
		b.logger.WarnContext(ctx, "high scores unavailable", "key", b.key, "error", err)
		return []domain.HighScoreEntry{}
	}
	if len(payload) == 0 {
		return []domain.HighScoreEntry{}
	}
	var entries []domain.HighScoreEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		b.logger.WarnContext(ctx, "discarding malformed high scores", "key", b.key, "error", err)
		return []domain.HighScoreEntry{}
	}
	if entries == nil {
		entries = []domain.HighScoreEntry{}
	}
	return entries
}

// Summarize derives the results view of a session.
func (b *ScoreBoard) Summarize(state domain.SessionState) domain.Summary {
	summary := domain.Summary{
		Score:             state.Score,
		TotalQuestions:    len(state.Questions),
		AnsweredQuestions: len(state.Answers),
	}
	for _, a := range state.Answers {
		switch {
		case a.Skipped:
			summary.Skipped++
		case a.TimedOut:
			summary.TimedOut++
		case !a.IsCorrect:
			summary.Incorrect++
		}
	}
	summary.Percentage = percentage(state.Score, summary.AnsweredQuestions)
	summary.CompletionPercentage = percentage(summary.AnsweredQuestions, summary.TotalQuestions)
	summary.FinishedEarly = state.Completed && summary.AnsweredQuestions < summary.TotalQuestions
	summary.Message = scoreMessage(summary.Percentage)
	return summary
}

func percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func scoreMessage(pct int) string {
	switch {
	case pct >= 90:
		return "Excellent! You really know your trivia!"
	case pct >= 80:
		return "Great job! Strong knowledge!"
	case pct >= 70:
		return "Good work! Keep practicing!"
	case pct >= 60:
		return "Not bad! Room for improvement!"
	default:
		return "Keep studying! You'll get better!"
	}
}
