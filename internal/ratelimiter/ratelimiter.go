package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter interface {
	// Allow reports whether key may proceed and, if not, how long to wait.
	Allow(key string) (bool, time.Duration)
}

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter keeps one token bucket per client key. A bucket refills
// at limit/window and holds at most limit tokens.
type TokenBucketLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

func NewTokenBucketLimiter(limit int, window time.Duration) *TokenBucketLimiter {
	if limit <= 0 {
		limit = 1
	}
	rl := &TokenBucketLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idle:     3 * window,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.cleanup(window)
	return rl
}

func (rl *TokenBucketLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Stop ends the cleanup goroutine.
func (rl *TokenBucketLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *TokenBucketLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *TokenBucketLimiter) evictIdle() {
	cutoff := rl.now().Add(-rl.idle)
	rl.mu.Lock()
	for k, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, k)
		}
	}
	rl.mu.Unlock()
}
