package app

import (
	"sync"

	"iwdc-quiz-service/internal/domain"
)

// Broadcaster fans leaderboard snapshots out to subscribers. Channels are
// buffered and a stale snapshot is dropped when a subscriber lags, so one slow
// client never blocks a publish.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan []domain.LeaderboardEntry]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan []domain.LeaderboardEntry]struct{})}
}

func (b *Broadcaster) Subscribe() (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) Publish(board []domain.LeaderboardEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- board:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}
