package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
)

// RateLimiter admits at most limit events per user in any sliding window of
// the given length. Each user keeps a ring of the last limit admissions.
type RateLimiter struct {
	mu       sync.Mutex
	rings    map[domain.UserID]*ring
	limit    int
	interval time.Duration
	now      func() time.Time
}

type ring struct {
	at   []time.Time
	next int
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RateLimiter{
		rings:    make(map[domain.UserID]*ring),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(uid domain.UserID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	r, ok := rl.rings[uid]
	if !ok {
		r = &ring{at: make([]time.Time, 0, rl.limit)}
		rl.rings[uid] = r
	}
	if len(r.at) < rl.limit {
		r.at = append(r.at, now)
		return true
	}
	// r.next is the oldest of the last limit admissions
	if now.Sub(r.at[r.next]) < rl.interval {
		return false
	}
	r.at[r.next] = now
	r.next = (r.next + 1) % rl.limit
	return true
}

// Forget drops the history of uid, e.g. once they leave voice.
func (rl *RateLimiter) Forget(uid domain.UserID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.rings, uid)
}
