package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"iwdc-quiz-service/internal/app"
	"iwdc-quiz-service/internal/domain"
	infrapg "iwdc-quiz-service/internal/infra/postgres"
	pgmigrations "iwdc-quiz-service/internal/infra/postgres/migrations"
	infraredis "iwdc-quiz-service/internal/infra/redis"
	"iwdc-quiz-service/internal/quiz"
)

func TestQuizAndLeaderboardEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuestions(t, ctx, pgURL, sampleQuestions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	bank, err := quiz.NewBank(ctx, infrapg.NewQuestionLoader(pool))
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	if bank.Len() != 2 {
		t.Fatalf("expected 2 questions from postgres, got %d", bank.Len())
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	store := infraredis.NewLeaderboardCache(redisClient, infrapg.NewLeaderboardStore(pool), 50, 5*time.Minute)
	service := app.NewQuizService(bank, store, 50)

	check, err := service.CheckAnswer(1, 1)
	if err != nil || !check.IsCorrect {
		t.Fatalf("expected correct check against pg-loaded bank, got %+v err=%v", check, err)
	}

	receipt, _, err := service.SubmitScore(ctx, "Ann", 50)
	if err != nil {
		t.Fatalf("submit Ann: %v", err)
	}
	if !receipt.IsNewBest || receipt.Rank != 1 || receipt.PreviousBest != nil {
		t.Fatalf("unexpected first receipt: %+v", receipt)
	}

	receipt, _, err = service.SubmitScore(ctx, "Ann", 30)
	if err != nil {
		t.Fatalf("submit Ann again: %v", err)
	}
	if receipt.IsNewBest || receipt.PreviousBest == nil || *receipt.PreviousBest != 50 || receipt.Best != 50 {
		t.Fatalf("expected non-improving submit to keep the row, got %+v", receipt)
	}

	receipt, board, err := service.SubmitScore(ctx, "Bo", 60)
	if err != nil {
		t.Fatalf("submit Bo: %v", err)
	}
	if receipt.Rank != 1 {
		t.Fatalf("expected Bo at rank 1, got %+v", receipt)
	}
	if len(board) != 2 || board[0].Name != "Bo" || board[1].Name != "Ann" || board[1].Rank != 2 {
		t.Fatalf("unexpected board: %+v", board)
	}

	// Second read comes from the Redis cache and must match.
	cached, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("cached leaderboard: %v", err)
	}
	if len(cached) != 2 || cached[0].Name != "Bo" {
		t.Fatalf("unexpected cached board: %+v", cached)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuestions(t *testing.T, ctx context.Context, dsn string, questions []domain.Question) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			t.Fatalf("marshal options: %v", err)
		}
		if _, err := db.ExecContext(ctx, `
			INSERT INTO questions (id, prompt, options, correct_index)
			VALUES (?, ?, ?::jsonb, ?)
			ON CONFLICT (id) DO UPDATE SET options = EXCLUDED.options`,
			q.ID, q.Prompt, string(options), q.CorrectIndex); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
		{ID: 2, Prompt: "Pick the vowel", Options: []string{"b", "e"}, CorrectIndex: 1},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
