package opentdb

import (
	"html"
	"math/rand"
	"slices"
	"strings"

	"trivia-quiz-service/internal/domain"
)

// Normalize converts provider results into questions: entities are decoded,
// duplicate options dropped, options shuffled with rnd and ids assigned from 1.
// Results that end up with fewer than two distinct options are discarded.
func Normalize(results []Result, rnd *rand.Rand) []domain.Question {
	questions := make([]domain.Question, 0, len(results))
	for _, r := range results {
		correct := html.UnescapeString(r.CorrectAnswer)
		options := make([]string, 0, len(r.IncorrectAnswers)+1)
		for _, incorrect := range r.IncorrectAnswers {
			options = append(options, html.UnescapeString(incorrect))
		}
		options = Dedupe(append(options, correct))
		if len(options) < 2 || !slices.Contains(options, correct) {
			continue
		}
		ShuffleOptions(options, rnd)

		questions = append(questions, domain.Question{
			ID:           len(questions) + 1,
			Text:         html.UnescapeString(r.Question),
			Options:      options,
			CorrectIndex: slices.Index(options, correct),
			Difficulty:   difficulty(r.Difficulty),
		})
	}
	return questions
}

// ShuffleOptions permutes options in place using rnd.
func ShuffleOptions(options []string, rnd *rand.Rand) {
	rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

// Dedupe drops repeated and blank options, keeping the first occurrence.
func Dedupe(options []string) []string {
	seen := make(map[string]struct{}, len(options))
	out := options[:0]
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			continue
		}
		if _, ok := seen[opt]; ok {
			continue
		}
		seen[opt] = struct{}{}
		out = append(out, opt)
	}
	return out
}

func difficulty(raw string) domain.Difficulty {
	switch d := domain.Difficulty(strings.ToLower(raw)); d {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
		return d
	default:
		return domain.DifficultyMedium
	}
}
