package source

import (
	"context"
	"fmt"

	"trivia-quiz-service/internal/domain"
)

// Bank holds a static question set (bundled file, database table).
type Bank interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// Provider fetches a fresh, already normalized question set from a remote service.
type Provider interface {
	FetchQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error)
}

// Source picks questions from the local bank or the remote provider.
// Every failure is reported as domain.ErrSourceUnavailable.
type Source struct {
	local  Bank
	remote Provider
}

// New returns a Source. remote may be nil when no provider is configured.
func New(local Bank, remote Provider) *Source {
	return &Source{local: local, remote: remote}
}

func (s *Source) GetQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	switch req.Source {
	case domain.SourceRemote:
		return s.fromRemote(ctx, req)
	case domain.SourceLocal, "":
		return s.fromLocal(ctx, req)
	default:
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrSourceUnavailable, req.Source)
	}
}

func (s *Source) fromLocal(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	if s.local == nil {
		return nil, fmt.Errorf("%w: no local question bank", domain.ErrSourceUnavailable)
	}
	all, err := s.local.LoadQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: local bank: %v", domain.ErrSourceUnavailable, err)
	}
	selected := Select(all, req.Difficulty, req.Count)
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no local questions available", domain.ErrSourceUnavailable)
	}
	return selected, nil
}

func (s *Source) fromRemote(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	if s.remote == nil {
		return nil, fmt.Errorf("%w: remote provider not configured", domain.ErrSourceUnavailable)
	}
	questions, err := s.remote.FetchQuestions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: provider returned no questions", domain.ErrSourceUnavailable)
	}
	return questions, nil
}

// Select keeps questions of the given difficulty (all of them for "mixed" or empty)
// and truncates to count when 0 < count < len. Input order is preserved.
func Select(questions []domain.Question, difficulty domain.Difficulty, count int) []domain.Question {
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if difficulty != "" && difficulty != domain.DifficultyMixed && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
	}
	if count > 0 && count < len(out) {
		out = out[:count]
	}
	return out
}
