package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1, Difficulty: domain.DifficultyEasy},
		{ID: 2, Text: "Which is a prime?", Options: []string{"4", "6", "7", "9"}, CorrectIndex: 2, Difficulty: domain.DifficultyMedium},
		{ID: 3, Text: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectIndex: 0, Difficulty: domain.DifficultyEasy},
	}
}

func newTestPlayer(out io.Writer) *player {
	return &player{
		engine: app.NewEngine(app.DefaultTimeLimit),
		board:  app.NewScoreBoard(memory.NewScoreStore()),
		out:    out,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestPlayFullRun(t *testing.T) {
	var out bytes.Buffer
	p := newTestPlayer(&out)

	input := strings.Join([]string{
		"2",  // correct
		"1",  // locked: rejected
		"",   // next
		"s",  // skip
		"p",  // back to the answered first question
		"n",  // forward
		"n",  // to the third question
		"9",  // no such option
		"1",  // correct
		"n",  // completes
	}, "\n")

	summary, err := p.run(context.Background(), testQuestions(), readLines(strings.NewReader(input)))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Score)
	assert.Equal(t, 3, summary.AnsweredQuestions)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 67, summary.Percentage)
	assert.False(t, summary.FinishedEarly)

	text := out.String()
	assert.Contains(t, text, "Question 1/3")
	assert.Contains(t, text, "Correct!")
	assert.Contains(t, text, "Skipped. The answer was: 7")
	assert.Contains(t, text, "is locked")
	assert.Contains(t, text, "no such option")
	assert.Contains(t, text, "Score: 2/3 (67%)")
	assert.Contains(t, text, "High scores")
}

func TestPlayFinishEarly(t *testing.T) {
	var out bytes.Buffer
	p := newTestPlayer(&out)

	summary, err := p.run(context.Background(), testQuestions(), readLines(strings.NewReader("1\nf\n")))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Score)
	assert.Equal(t, 1, summary.AnsweredQuestions)
	assert.True(t, summary.FinishedEarly)
	assert.Contains(t, out.String(), "Wrong. The answer was: 4")
	assert.Contains(t, out.String(), "Finished early: 1 of 3")

	scores := p.board.Load(context.Background())
	require.Len(t, scores, 1)
	assert.Equal(t, 0, scores[0].Percentage)
}

func TestPlayEndOfInputFinishes(t *testing.T) {
	var out bytes.Buffer
	p := newTestPlayer(&out)

	summary, err := p.run(context.Background(), testQuestions(), readLines(strings.NewReader("")))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.AnsweredQuestions)
	assert.True(t, summary.FinishedEarly)
}

func TestPlayRejectsEmptySet(t *testing.T) {
	p := newTestPlayer(io.Discard)
	_, err := p.run(context.Background(), nil, readLines(strings.NewReader("")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPrintScores(t *testing.T) {
	var out bytes.Buffer
	printScores(&out, nil)
	assert.Equal(t, "No scores yet.\n", out.String())

	out.Reset()
	printScores(&out, []domain.HighScoreEntry{
		{Score: 4, AnsweredQuestions: 5, Percentage: 80, Date: "3/7/2026"},
		{Score: 1, AnsweredQuestions: 2, Percentage: 50, Date: "3/8/2026"},
	})
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "4/5")
	assert.Contains(t, lines[1], "80%")
	assert.Contains(t, lines[2], "3/8/2026")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
