package domain

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator with the domain rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(questionRules, Question{})
	})
	return validate
}

func questionRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(Question)
	if q.CorrectIndex >= len(q.Options) {
		sl.ReportError(q.CorrectIndex, "CorrectIndex", "correctAnswer", "optionrange", "")
	}
}

// ValidateQuestions checks every question and that ids are unique within the set.
func ValidateQuestions(questions []Question) error {
	seen := make(map[int]struct{}, len(questions))
	for _, q := range questions {
		if err := Validator().Struct(q); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrInvalidInput, q.ID, err)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %d", ErrInvalidInput, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
