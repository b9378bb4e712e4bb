package middleware

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Quota is a token bucket: PerMinute tokens refill each minute, Burst caps the bucket
type Quota struct {
	PerMinute int
	Burst     int
}

// idleBucketTTL is how long a workspace's bucket survives without requests
const idleBucketTTL = 10 * time.Minute

// RateLimiter enforces a Quota per workspace. Exports are the heaviest
// reads the API serves, so the export routes sit behind one.
type RateLimiter struct {
	quota Quota
	now   func() time.Time

	mu      sync.Mutex
	buckets map[int32]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// decision is the outcome of taking one token
type decision struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
	resetAt    time.Time
}

// NewRateLimiter starts a limiter and its idle-bucket sweeper; call Stop to end it
func NewRateLimiter(q Quota) *RateLimiter {
	if q.PerMinute < 1 {
		q.PerMinute = 1
	}
	if q.Burst < 1 {
		q.Burst = 1
	}
	rl := &RateLimiter{
		quota:   q,
		now:     time.Now,
		buckets: make(map[int32]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.sweepLoop(idleBucketTTL / 2)
	return rl
}

func (r *RateLimiter) refillRate() rate.Limit {
	return rate.Limit(float64(r.quota.PerMinute) / 60)
}

// take consumes one token for workspaceID if one is available
func (r *RateLimiter) take(workspaceID int32) decision {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[workspaceID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.refillRate(), r.quota.Burst)}
		r.buckets[workspaceID] = b
	}
	b.lastUsed = now

	if b.limiter.AllowN(now, 1) {
		tokens := b.limiter.TokensAt(now)
		return decision{
			allowed:   true,
			remaining: int(math.Floor(tokens)),
			resetAt:   now.Add(r.refillTime(float64(r.quota.Burst) - tokens)),
		}
	}

	// a reservation reports the exact wait; cancel it so no token is spent
	res := b.limiter.ReserveN(now, 1)
	wait := res.DelayFrom(now)
	res.CancelAt(now)
	return decision{
		retryAfter: wait,
		resetAt:    now.Add(r.refillTime(float64(r.quota.Burst) - b.limiter.TokensAt(now))),
	}
}

func (r *RateLimiter) refillTime(missing float64) time.Duration {
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(r.refillRate()) * float64(time.Second))
}

// Allow reports whether workspaceID may make one more request now
func (r *RateLimiter) Allow(workspaceID int32) bool {
	return r.take(workspaceID).allowed
}

func (r *RateLimiter) sweep() int {
	cutoff := r.now().Add(-idleBucketTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, b := range r.buckets {
		if b.lastUsed.Before(cutoff) {
			delete(r.buckets, id)
			removed++
		}
	}
	return removed
}

func (r *RateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				log.Debug().Int("buckets", n).Msg("Swept idle rate limit buckets")
			}
		case <-r.stop:
			return
		}
	}
}

// Stop ends the sweeper. It is safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// RateLimitMiddleware applies rl per workspace and reports the quota in
// X-RateLimit-* headers. It must run after Authenticate; anonymous requests pass.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	limit := strconv.Itoa(rl.quota.PerMinute)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			workspaceID := GetWorkspaceID(c)
			if workspaceID == 0 {
				return next(c)
			}

			d := rl.take(workspaceID)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.resetAt.Unix(), 10))
			if d.allowed {
				return next(c)
			}

			retryAfter := int(math.Ceil(d.retryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))

			log.Warn().
				Int32("workspace_id", workspaceID).
				Str("path", c.Request().URL.Path).
				Int("retry_after", retryAfter).
				Msg("Export quota exceeded")

			return rateLimitedError(c, fmt.Sprintf("Export quota exceeded. Retry after %d seconds.", retryAfter))
		}
	}
}
