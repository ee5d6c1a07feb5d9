package scheduler

import (
	"sync"
	"time"
)

// tokenBucket throttles task admission to a configurable rate, refilling
// continuously rather than in discrete ticks so a burst of admissions
// spread evenly across a second is never penalized relative to one spread
// unevenly. The rate can be adjusted between takes, since the scheduler
// rescales it with the current load level on every admission cycle.
type tokenBucket struct {
	mu         sync.Mutex
	rate       float64 // tokens per second
	burst      float64
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

// newTokenBucket constructs a bucket starting full, with its burst size
// equal to its initial rate (i.e. it can absorb up to one second's worth
// of admissions immediately).
func newTokenBucket(rate float64) *tokenBucket {
	if rate <= 0 {
		rate = 1
	}
	return &tokenBucket{
		rate:       rate,
		burst:      rate,
		tokens:     rate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// SetRate adjusts the bucket's fill rate and burst capacity. It does not
// reset accumulated tokens beyond the new burst cap.
func (b *tokenBucket) SetRate(rate float64) {
	if rate <= 0 {
		rate = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	b.rate = rate
	b.burst = rate
	if b.tokens > b.burst {
		b.tokens = b.burst
	}
}

// Allow reports whether a token is available and, if so, consumes it.
func (b *tokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (b *tokenBucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.lastRefill = now
	b.tokens += elapsed * b.rate
	if b.tokens > b.burst {
		b.tokens = b.burst
	}
}
