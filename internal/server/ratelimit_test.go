package server

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(rate int, window time.Duration) (*RateLimiter, *manualClock) {
	clock := &manualClock{now: time.Unix(1700000000, 0)}
	rl := NewRateLimiter(rate, window)
	rl.now = clock.Now
	return rl, clock
}

func TestRateLimiterAllow(t *testing.T) {
	rl, clock := newTestLimiter(3, time.Minute)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1")
		require.True(t, ok, "request %d", i)
	}

	ok, wait := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 20*time.Second, wait)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "other clients keep their own bucket")

	clock.Advance(20 * time.Second)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok, "one token refilled")

	ok, _ = rl.Allow("10.0.0.1")
	assert.False(t, ok)

	clock.Advance(time.Minute)
	for _i := 0; _i < 3; _i++ {
		ok, _ = rl.Allow("10.0.0.1")
		assert.True(t, ok)
	}
}

func TestRateLimiterRejectsEmptyKeyAndClosed(t *testing.T) {
	rl, _ := newTestLimiter(10, time.Second)

	ok, _ := rl.Allow("")
	assert.False(t, ok)

	rl.Close()
	rl.Close()
	ok, _ = rl.Allow("10.0.0.1")
	assert.False(t, ok)
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	defer rl.Close()

	assert.Equal(t, 600, rl.rate)
	assert.Equal(t, time.Minute, rl.window)
}

func TestRateLimiterEvictsOldest(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Hour)
	defer rl.Close()

	for i := 0; i < maxTrackedClients; i++ {
		ok, _ := rl.Allow(fmt.Sprintf("client-%d", i))
		require.True(t, ok)
		clock.Advance(time.Millisecond)
	}

	ok, _ := rl.Allow("newcomer")
	assert.True(t, ok)
	assert.Len(t, rl.buckets, maxTrackedClients)
	assert.NotContains(t, rl.buckets, "client-0")
}

func TestRateLimiterConcurrent(t *testing.T) {
	rl := NewRateLimiter(100, time.Hour)
	defer rl.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for _i := 0; _i < 10; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _i := 0; _i < 20; _i++ {
				if ok, _ := rl.Allow("shared"); ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}
