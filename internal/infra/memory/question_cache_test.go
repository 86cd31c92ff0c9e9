package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	loader := &countingLoader{questions: sampleQuestions()}
	cache := NewQuestionCache(loader, time.Minute)
	req := domain.QuestionRequest{Source: domain.SourceRemote, Count: 2, Difficulty: domain.DifficultyEasy}

	if _, err := cache.GetQuestions(context.Background(), req); err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	got, err := cache.GetQuestions(context.Background(), req)
	if err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	// cached sets are handed out as copies
	got[0].Options[0] = "mutated"
	again, _ := cache.GetQuestions(context.Background(), req)
	if again[0].Options[0] == "mutated" {
		t.Fatalf("cache entry was mutated through a returned set")
	}

	other := req
	other.Difficulty = domain.DifficultyHard
	_, _ = cache.GetQuestions(context.Background(), other)
	if loader.calls != 2 {
		t.Fatalf("different request must miss, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	loader := &countingLoader{questions: sampleQuestions()}
	cache := NewQuestionCache(loader, time.Minute)
	cache.clock = func() time.Time { return now }

	req := domain.QuestionRequest{Source: domain.SourceLocal}
	_, _ = cache.GetQuestions(context.Background(), req)
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetQuestions(context.Background(), req)
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheSkipsErrorsAndZeroTTL(t *testing.T) {
	failing := &countingLoader{err: errors.New("offline")}
	cache := NewQuestionCache(failing, time.Minute)
	req := domain.QuestionRequest{Source: domain.SourceRemote}
	for i := 0; i < 2; i++ {
		if _, err := cache.GetQuestions(context.Background(), req); err == nil {
			t.Fatalf("expected error")
		}
	}
	if failing.calls != 2 {
		t.Fatalf("errors must not be cached, loader calls %d", failing.calls)
	}

	loader := &countingLoader{questions: sampleQuestions()}
	passthrough := NewQuestionCache(loader, 0)
	_, _ = passthrough.GetQuestions(context.Background(), req)
	_, _ = passthrough.GetQuestions(context.Background(), req)
	if loader.calls != 2 {
		t.Fatalf("zero ttl must not cache, loader calls %d", loader.calls)
	}
}

type countingLoader struct {
	questions []domain.Question
	err       error
	calls     int
}

func (l *countingLoader) GetQuestions(context.Context, domain.QuestionRequest) ([]domain.Question, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.questions, nil
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Text: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectIndex: 1, Difficulty: domain.DifficultyEasy},
		{ID: 2, Text: "What is 3 * 3?", Options: []string{"6", "9", "12"}, CorrectIndex: 1, Difficulty: domain.DifficultyEasy},
	}
}
