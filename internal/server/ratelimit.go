package server

import (
	"sync"
	"time"
)

const maxTrackedClients = 10000

// RateLimiter is a per-client token bucket. It is safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int
	window  time.Duration
	now     func() time.Time
	closed  bool
}

type bucket struct {
	tokens     int
	lastRefill int64
}

// NewRateLimiter allows rate requests per window for each client key.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	if rate <= 0 {
		rate = 600
	}
	if window <= 0 {
		window = time.Minute
	}

	return &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		now:     time.Now,
	}
}

// Allow takes one token for key. When the bucket is empty it returns false and the
// time until the next token is due. An empty key is never allowed.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		return false, rl.window
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return false, rl.window
	}

	nowNano := rl.now().UnixNano()
	b, exists := rl.buckets[key]
	if !exists {
		if len(rl.buckets) >= maxTrackedClients {
			rl.evictOldestUnsafe()
		}
		rl.buckets[key] = &bucket{tokens: rl.rate - 1, lastRefill: nowNano}
		return true, 0
	}

	elapsed := nowNano - b.lastRefill
	if elapsed >= int64(rl.window) {
		b.tokens = rl.rate
		b.lastRefill = nowNano
	} else if elapsed > 0 {
		refill := int(float64(rl.rate) * float64(elapsed) / float64(rl.window))
		if refill > 0 {
			b.tokens = min(b.tokens+refill, rl.rate)
			b.lastRefill = nowNano
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}

	perToken := rl.window / time.Duration(rl.rate)
	wait := perToken - time.Duration(nowNano-b.lastRefill)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return false, wait
}

// Close drops all buckets. Every later Allow call is refused.
func (rl *RateLimiter) Close() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return
	}
	rl.closed = true
	clear(rl.buckets)
	rl.buckets = nil
}

func (rl *RateLimiter) evictOldestUnsafe() {
	oldestKey := ""
	oldestTime := int64(1<<63 - 1)

	for key, b := range rl.buckets {
		if b.lastRefill < oldestTime {
			oldestKey = key
			oldestTime = b.lastRefill
		}
	}

	if oldestKey != "" {
		delete(rl.buckets, oldestKey)
	}
}
