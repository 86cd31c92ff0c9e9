package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-quiz-service/internal/domain"
)

// QuestionBank serves the local question set from the questions table.
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

func (b *QuestionBank) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := b.pool.Query(ctx, `SELECT id, text, options, correct_index, difficulty FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			rawOptions []byte
			difficulty string
		)
		if err := rows.Scan(&q.ID, &q.Text, &rawOptions, &q.CorrectIndex, &difficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of question %d: %w", q.ID, err)
		}
		q.Difficulty = domain.Difficulty(difficulty)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if err := domain.ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Seed upserts questions by id.
func (b *QuestionBank) Seed(ctx context.Context, questions []domain.Question) error {
	batch := &pgx.Batch{}
	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options of question %d: %w", q.ID, err)
		}
		batch.Queue(`INSERT INTO questions (id, text, options, correct_index, difficulty)
VALUES ($1, $2, $3::jsonb, $4, $5)
ON CONFLICT (id) DO UPDATE SET text=EXCLUDED.text, options=EXCLUDED.options,
	correct_index=EXCLUDED.correct_index, difficulty=EXCLUDED.difficulty`,
			q.ID, q.Text, string(options), q.CorrectIndex, string(q.Difficulty))
	}
	results := b.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range questions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("seed questions: %w", err)
		}
	}
	return nil
}
