package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"iwdc-quiz-service/internal/app"
	"iwdc-quiz-service/internal/domain"
)

const topKey = "leaderboard:top"

// LeaderboardCache is a read-through cache in front of any LeaderboardStore.
// The ranked top rows are kept as one JSON value with a jittered TTL; cache
// fills are collapsed with singleflight so a cold key causes a single store
// query. Submits delegate to the store and invalidate the cached board.
type LeaderboardCache struct {
	client *redis.Client
	store  app.LeaderboardStore
	size   int
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, store app.LeaderboardStore, size int, ttl time.Duration) *LeaderboardCache {
	if size <= 0 {
		size = app.DefaultLeaderboardSize
	}
	return &LeaderboardCache{
		client: client,
		store:  store,
		size:   size,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) Submit(ctx context.Context, name string, score int) (domain.SubmitReceipt, error) {
	receipt, err := c.store.Submit(ctx, name, score)
	if err != nil {
		return domain.SubmitReceipt{}, err
	}
	// Best-effort invalidation; a stale board expires on its own.
	_ = c.client.Del(ctx, topKey).Err()
	return receipt, nil
}

func (c *LeaderboardCache) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 || n > c.size {
		// Requests beyond the cached window go straight to the store.
		return c.store.TopN(ctx, n)
	}

	if board, ok := c.cached(ctx); ok {
		return truncate(board, n), nil
	}

	result, err, _ := c.sf.Do(topKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if board, ok := c.cached(ctx); ok {
			return board, nil
		}

		board, err := c.store.TopN(ctx, c.size)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(board); err == nil {
			_ = c.client.Set(ctx, topKey, data, c.ttlWithJitter()).Err()
		}
		return board, nil
	})
	if err != nil {
		return nil, err
	}
	return truncate(result.([]domain.LeaderboardEntry), n), nil
}

func (c *LeaderboardCache) cached(ctx context.Context) ([]domain.LeaderboardEntry, bool) {
	data, err := c.client.Get(ctx, topKey).Bytes()
	if err != nil {
		return nil, false
	}
	var board []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, false
	}
	return board, true
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func truncate(board []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
	if n > 0 && n < len(board) {
		return board[:n]
	}
	return board
}
