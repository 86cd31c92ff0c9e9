package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreStore persists leaderboard payloads in the score_records key/value table.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload::text FROM score_records WHERE key=$1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load score record: %w", err)
	}
	return payload, nil
}

func (s *ScoreStore) Save(ctx context.Context, key string, payload []byte) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO score_records (key, payload, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE SET payload=EXCLUDED.payload, updated_at=EXCLUDED.updated_at`, key, string(payload))
	if err != nil {
		return fmt.Errorf("save score record: %w", err)
	}
	return nil
}
