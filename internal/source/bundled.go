package source

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"trivia-quiz-service/internal/domain"
)

//go:embed questions.json
var bundledQuestions []byte

// StaticBank serves a fixed question set (the bundled file, or fixtures in tests).
type StaticBank struct {
	questions []domain.Question
}

// NewStaticBank validates questions and returns a bank serving them.
func NewStaticBank(questions []domain.Question) (*StaticBank, error) {
	if err := domain.ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return &StaticBank{questions: questions}, nil
}

// NewBundledBank decodes the question set compiled into the binary.
func NewBundledBank() (*StaticBank, error) {
	return ParseBank(bundledQuestions)
}

// ParseBank decodes a JSON array of questions.
func ParseBank(data []byte) (*StaticBank, error) {
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return NewStaticBank(questions)
}

func (b *StaticBank) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(b.questions))
	copy(out, b.questions)
	return out, nil
}
