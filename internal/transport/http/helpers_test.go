package http

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/source"
)

func newTestServer(t *testing.T, opts ...app.Option) (*httptest.Server, *app.QuizService) {
	t.Helper()
	bank, err := source.NewStaticBank(sampleQuestions())
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := app.NewQuizService(
		memory.NewSessionStore(),
		source.New(bank, nil),
		app.NewScoreBoard(memory.NewScoreStore(), app.WithScoreLogger(logger)),
		append([]app.Option{app.WithTickInterval(0), app.WithLogger(logger)}, opts...)...,
	)
	t.Cleanup(service.Close)

	defaults := domain.QuestionRequest{Source: domain.SourceLocal, Count: 10, Difficulty: domain.DifficultyMixed}
	router := NewRouter(NewAPIHandler(service, defaults, logger), NewWSHandler(service, logger))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, service
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1, Difficulty: domain.DifficultyEasy},
		{ID: 2, Text: "Which is a prime?", Options: []string{"4", "6", "7", "9"}, CorrectIndex: 2, Difficulty: domain.DifficultyMedium},
	}
}
