package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"iwdc-quiz-service/internal/domain"
)

// LeaderboardStore keeps one best-score row per participant name, guarded by a
// mutex so concurrent submissions for the same name cannot lose updates. It is
// the default store when no Postgres is configured, and the fake in tests.
type LeaderboardStore struct {
	mu    sync.RWMutex
	rows  map[string]*row
	clock func() time.Time
}

type row struct {
	score int
	at    time.Time
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{
		rows:  make(map[string]*row),
		clock: time.Now,
	}
}

// NewLeaderboardStoreWithClock is test-only for deterministic timestamps.
func NewLeaderboardStoreWithClock(clock func() time.Time) *LeaderboardStore {
	return &LeaderboardStore{rows: make(map[string]*row), clock: clock}
}

// Submit upserts a score for a name: insert when absent, overwrite only when
// the new score is strictly better, otherwise leave the row untouched.
func (s *LeaderboardStore) Submit(_ context.Context, name string, score int) (domain.SubmitReceipt, error) {
	trimmed, err := domain.NormalizeName(name)
	if err != nil {
		return domain.SubmitReceipt{}, err
	}
	if err := domain.ValidateScore(score); err != nil {
		return domain.SubmitReceipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	receipt := domain.SubmitReceipt{Best: score}
	existing, ok := s.rows[trimmed]
	switch {
	case !ok:
		s.rows[trimmed] = &row{score: score, at: s.clock()}
		receipt.IsNewBest = true
	case score > existing.score:
		previous := existing.score
		receipt.PreviousBest = &previous
		receipt.IsNewBest = true
		existing.score = score
		existing.at = s.clock()
	default:
		previous := existing.score
		receipt.PreviousBest = &previous
		receipt.Best = existing.score
	}

	for i, entry := range s.rankedLocked() {
		if entry.Name == trimmed {
			receipt.Rank = i + 1
			break
		}
	}
	return receipt, nil
}

// TopN returns the first n ranked rows.
func (s *LeaderboardStore) TopN(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := s.rankedLocked()
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func (s *LeaderboardStore) rankedLocked() []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(s.rows))
	for name, r := range s.rows {
		entries = append(entries, domain.LeaderboardEntry{
			Name:      name,
			Score:     r.score,
			Timestamp: r.at,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		return entries[i].Name < entries[j].Name
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
