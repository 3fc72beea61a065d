package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"iwdc-quiz-service/internal/app"
	"iwdc-quiz-service/internal/config"
	"iwdc-quiz-service/internal/domain"
	"iwdc-quiz-service/internal/infra/memory"
	infrapg "iwdc-quiz-service/internal/infra/postgres"
	infraredis "iwdc-quiz-service/internal/infra/redis"
	"iwdc-quiz-service/internal/quiz"
)

// buildBank loads the question bank from Postgres when a pool is present,
// from the configured YAML file otherwise, and from the built-in set as the
// last resort.
func buildBank(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (*quiz.Bank, error) {
	var loader quiz.Loader
	switch {
	case pool != nil:
		loader = infrapg.NewQuestionLoader(pool)
	case cfg.Quiz.File != "":
		loader = quiz.NewFileLoader(cfg.Quiz.File)
	default:
		loader = quiz.StaticLoader(defaultQuestions())
	}
	return quiz.NewBank(ctx, loader)
}

// buildStore picks the leaderboard store (Postgres or in-memory) and wraps it
// in the Redis read-through cache when Redis is configured.
func buildStore(cfg config.Config, pool *pgxpool.Pool, redisClient *redis.Client) app.LeaderboardStore {
	var store app.LeaderboardStore
	if pool != nil {
		store = infrapg.NewLeaderboardStore(pool)
	} else {
		store = memory.NewLeaderboardStore()
	}
	if redisClient != nil {
		ttl := config.TTLDuration(cfg.Leaderboard.TTL, 30*time.Second)
		store = infraredis.NewLeaderboardCache(redisClient, store, cfg.Leaderboard.Size, ttl)
	}
	return store
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// defaultQuestions is the built-in bank used when neither Postgres nor a
// question file is configured; handy for demos and local play.
func defaultQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           1,
			Prompt:       "What does HTML stand for?",
			Options:      []string{"Hyper Text Markup Language", "High Tech Modern Language", "Hyperlink and Text Markup Language", "Home Tool Markup Language"},
			CorrectIndex: 0,
		},
		{
			ID:           2,
			Prompt:       "Which CSS property controls the text size?",
			Options:      []string{"text-style", "font-size", "text-size", "font-style"},
			CorrectIndex: 1,
		},
		{
			ID:           3,
			Prompt:       "Inside which HTML element do we put JavaScript?",
			Options:      []string{"<js>", "<scripting>", "<script>", "<javascript>"},
			CorrectIndex: 2,
		},
		{
			ID:           4,
			Prompt:       "Which HTTP status code means Not Found?",
			Options:      []string{"200", "301", "404", "500"},
			CorrectIndex: 2,
		},
		{
			ID:           5,
			Prompt:       "Which method adds an element to the end of a JavaScript array?",
			Options:      []string{"push()", "pop()", "shift()", "concat()"},
			CorrectIndex: 0,
		},
	}
}
