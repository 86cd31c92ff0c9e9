package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	pgstore "trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/opentdb"
	"trivia-quiz-service/internal/source"
)

// deps are the shared backends every command builds its components from.
type deps struct {
	cfg    config.Config
	logger *slog.Logger
	redis  *redis.Client
	pool   *pgxpool.Pool
}

func loadConfig(path string, logOut io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	format := cfg.Log.Format
	if logFormat != "" {
		format = logFormat
	}
	logger := newLogger(logOut, cfg.Log.Level, format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openDeps(ctx context.Context, cfg config.Config, logger *slog.Logger) (*deps, error) {
	d := &deps{cfg: cfg, logger: logger}
	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := d.redis.Ping(ctx).Err(); err != nil {
			d.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		d.pool = pool
	}
	return d, nil
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// questionSource builds local bank + remote provider behind a question cache.
func (d *deps) questionSource() (app.QuestionSource, error) {
	var bank source.Bank
	if d.pool != nil {
		bank = pgstore.NewQuestionBank(d.pool)
	} else {
		bundled, err := source.NewBundledBank()
		if err != nil {
			return nil, fmt.Errorf("bundled questions: %w", err)
		}
		bank = bundled
	}
	provider := opentdb.NewClient(d.cfg.Trivia.BaseURL, config.TTLDuration(d.cfg.Trivia.Timeout, 10*time.Second))
	src := source.New(bank, provider)

	cacheTTL := config.TTLDuration(d.cfg.Quiz.CacheTTL, 10*time.Minute)
	if d.redis != nil {
		return redisstore.NewQuestionCache(d.redis, src, cacheTTL), nil
	}
	return memory.NewQuestionCache(src, cacheTTL), nil
}

func (d *deps) scoreBoard() (*app.ScoreBoard, error) {
	var store app.ScoreStore
	switch d.cfg.Scores.Store {
	case "redis":
		if d.redis == nil {
			return nil, fmt.Errorf("scores store redis requires redis.addr")
		}
		store = redisstore.NewScoreStore(d.redis)
	case "postgres":
		if d.pool == nil {
			return nil, fmt.Errorf("scores store postgres requires postgres.url")
		}
		store = pgstore.NewScoreStore(d.pool)
	default:
		store = memory.NewScoreStore()
	}
	return app.NewScoreBoard(store,
		app.WithScoresKey(d.cfg.Scores.Key),
		app.WithScoresLimit(d.cfg.Scores.Limit),
		app.WithScoreLogger(d.logger),
	), nil
}

func (d *deps) sessionStore() app.SessionRepository {
	if d.redis != nil {
		return redisstore.NewSessionStore(d.redis, config.TTLDuration(d.cfg.Redis.TTL, 30*time.Minute))
	}
	return memory.NewSessionStore()
}

func (d *deps) timeLimit() int {
	if d.cfg.Quiz.TimeLimit > 0 {
		return d.cfg.Quiz.TimeLimit
	}
	return app.DefaultTimeLimit
}

func (d *deps) defaultRequest() domain.QuestionRequest {
	req := domain.QuestionRequest{
		Source:     domain.SourceKind(d.cfg.Quiz.Source),
		Count:      d.cfg.Quiz.QuestionCount,
		Difficulty: domain.Difficulty(d.cfg.Quiz.Difficulty),
		Category:   d.cfg.Quiz.Category,
	}
	if req.Source == "" {
		req.Source = domain.SourceLocal
	}
	if req.Count == 0 {
		req.Count = app.DefaultQuestionCount
	}
	if req.Difficulty == "" {
		req.Difficulty = domain.DifficultyMixed
	}
	return req
}
