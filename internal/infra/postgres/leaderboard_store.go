package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"iwdc-quiz-service/internal/domain"
)

// LeaderboardStore persists one best-score row per participant name.
// The upsert is a single conditional INSERT ... ON CONFLICT statement, so two
// concurrent submissions for the same name cannot lose an update.
type LeaderboardStore struct {
	pool *pgxpool.Pool
}

func NewLeaderboardStore(pool *pgxpool.Pool) *LeaderboardStore {
	return &LeaderboardStore{pool: pool}
}

const submitSQL = `
WITH existing AS (
	SELECT score FROM submissions WHERE name = $1
), upsert AS (
	INSERT INTO submissions (name, score, achieved_at)
	VALUES ($1, $2, now())
	ON CONFLICT (name) DO UPDATE
		SET score = EXCLUDED.score, achieved_at = EXCLUDED.achieved_at
		WHERE submissions.score < EXCLUDED.score
	RETURNING score
)
SELECT (SELECT score FROM existing), (SELECT score FROM upsert)`

const rankSQL = `
SELECT rank FROM (
	SELECT name, ROW_NUMBER() OVER (ORDER BY score DESC, achieved_at ASC) AS rank
	FROM submissions
) ranked
WHERE name = $1`

func (s *LeaderboardStore) Submit(ctx context.Context, name string, score int) (domain.SubmitReceipt, error) {
	trimmed, err := domain.NormalizeName(name)
	if err != nil {
		return domain.SubmitReceipt{}, err
	}
	if err := domain.ValidateScore(score); err != nil {
		return domain.SubmitReceipt{}, err
	}

	var previous, written *int
	if err := s.pool.QueryRow(ctx, submitSQL, trimmed, score).Scan(&previous, &written); err != nil {
		return domain.SubmitReceipt{}, storeErr("submit score", err)
	}

	receipt := domain.SubmitReceipt{
		IsNewBest:    written != nil,
		PreviousBest: previous,
		Best:         score,
	}
	if written == nil && previous != nil {
		receipt.Best = *previous
	}

	if err := s.pool.QueryRow(ctx, rankSQL, trimmed).Scan(&receipt.Rank); err != nil {
		return domain.SubmitReceipt{}, storeErr("rank lookup", err)
	}
	return receipt, nil
}

func (s *LeaderboardStore) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, score, achieved_at FROM submissions ORDER BY score DESC, achieved_at ASC LIMIT $1`, n)
	if err != nil {
		return nil, storeErr("load leaderboard", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, n)
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.Name, &entry.Score, &entry.Timestamp); err != nil {
			return nil, storeErr("scan leaderboard row", err)
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("read leaderboard", err)
	}
	return entries, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
