package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"iwdc-quiz-service/internal/app"
	"iwdc-quiz-service/internal/domain"
	"iwdc-quiz-service/internal/infra/memory"
)

func TestTopNReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	mr, client := startMiniredis(t)
	defer mr.Close()

	store := &countingStore{LeaderboardStore: seededStore(t)}
	cache := NewLeaderboardCache(client, store, 50, time.Minute)

	board, err := cache.TopN(ctx, 50)
	if err != nil {
		t.Fatalf("topn: %v", err)
	}
	if len(board) != 2 || board[0].Name != "Bo" {
		t.Fatalf("unexpected board: %+v", board)
	}
	if store.topCalls != 1 {
		t.Fatalf("expected one store read, got %d", store.topCalls)
	}

	// Second read is served from Redis.
	if _, err := cache.TopN(ctx, 50); err != nil {
		t.Fatalf("topn: %v", err)
	}
	if store.topCalls != 1 {
		t.Fatalf("expected cache hit, store reads=%d", store.topCalls)
	}
	if !mr.Exists(topKey) {
		t.Fatalf("expected cached key in redis")
	}
}

func TestTopNTruncatesCachedBoard(t *testing.T) {
	ctx := context.Background()
	mr, client := startMiniredis(t)
	defer mr.Close()

	cache := NewLeaderboardCache(client, seededStore(t), 50, time.Minute)

	board, err := cache.TopN(ctx, 1)
	if err != nil {
		t.Fatalf("topn: %v", err)
	}
	if len(board) != 1 || board[0].Name != "Bo" {
		t.Fatalf("expected truncated board, got %+v", board)
	}
}

func TestSubmitInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	mr, client := startMiniredis(t)
	defer mr.Close()

	store := &countingStore{LeaderboardStore: seededStore(t)}
	cache := NewLeaderboardCache(client, store, 50, time.Minute)

	if _, err := cache.TopN(ctx, 50); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if _, err := cache.Submit(ctx, "Cy", 90); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if mr.Exists(topKey) {
		t.Fatalf("expected cached board to be invalidated")
	}

	board, err := cache.TopN(ctx, 50)
	if err != nil {
		t.Fatalf("topn: %v", err)
	}
	if board[0].Name != "Cy" || store.topCalls != 2 {
		t.Fatalf("expected refilled board led by Cy, got %+v (reads=%d)", board, store.topCalls)
	}
}

func TestSubmitErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	mr, client := startMiniredis(t)
	defer mr.Close()

	cache := NewLeaderboardCache(client, memory.NewLeaderboardStore(), 50, time.Minute)

	if _, err := cache.Submit(ctx, "   ", 5); err != domain.ErrInvalidName {
		t.Fatalf("expected validation error from the store, got %v", err)
	}
}

type countingStore struct {
	app.LeaderboardStore
	topCalls int
}

func (s *countingStore) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	s.topCalls++
	return s.LeaderboardStore.TopN(ctx, n)
}

func seededStore(t *testing.T) *memory.LeaderboardStore {
	t.Helper()
	store := memory.NewLeaderboardStore()
	if _, err := store.Submit(context.Background(), "Ann", 50); err != nil {
		t.Fatalf("seed Ann: %v", err)
	}
	if _, err := store.Submit(context.Background(), "Bo", 60); err != nil {
		t.Fatalf("seed Bo: %v", err)
	}
	return store
}

func startMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}
