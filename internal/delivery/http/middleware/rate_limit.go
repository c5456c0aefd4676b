package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/logger"
	"go-intake-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// hitScript counts one hit in a fixed window and returns {count, ms until reset}.
// The expiry is only set on the first hit so the window does not slide.
var hitScript = goredis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RateLimiter counts requests per key in fixed windows. Counters live in
// Redis when a client is configured and in process memory otherwise.
type RateLimiter struct {
	redis  *goredis.Client
	memory *windowCounter
}

func NewRateLimiter(redisClient *goredis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient, memory: newWindowCounter()}
}

// rule is one named limit; key returns "" to skip counting the request
type rule struct {
	name       string
	limit      int
	window     time.Duration
	failClosed bool
	key        func(c *gin.Context) string
}

// Global limits every request per client IP and fails open
func (l *RateLimiter) Global(limit int, window time.Duration) gin.HandlerFunc {
	return l.handler(rule{
		name:   "ip",
		limit:  limit,
		window: window,
		key:    func(c *gin.Context) string { return c.ClientIP() },
	})
}

// Credentials guards the login and signup submissions, counted per submitted
// email and client IP. Fails closed when Redis errors.
func (l *RateLimiter) Credentials(limit int, window time.Duration) gin.HandlerFunc {
	return l.handler(rule{
		name:       "auth",
		limit:      limit,
		window:     window,
		failClosed: true,
		key: func(c *gin.Context) string {
			return domain.NormalizeEmail(c.PostForm("email")) + "|" + c.ClientIP()
		},
	})
}

// Uploads limits certificate uploads per identity
func (l *RateLimiter) Uploads(limit int, window time.Duration) gin.HandlerFunc {
	return l.handler(rule{
		name:   "upload",
		limit:  limit,
		window: window,
		key: func(c *gin.Context) string {
			if identity := CurrentIdentity(c); identity != nil {
				return identity.ID
			}
			return c.ClientIP()
		},
	})
}

func (l *RateLimiter) handler(r rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := r.key(c)
		if k == "" {
			c.Next()
			return
		}

		count, resetIn, err := l.hit(c.Request.Context(), "rl:"+r.name+":"+k, r.window)
		if err != nil {
			logger.Log.Warn("rate limit store unavailable", "rule", r.name, "error", err)
			if r.failClosed {
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			}
			count, resetIn = l.memory.hit(r.name+":"+k, r.window, time.Now())
		}

		remaining := r.limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(r.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > r.limit {
			seconds := int(resetIn.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			security.DefaultLogger().LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.FullPath())
			response.Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) hit(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if l.redis == nil {
		n, resetIn := l.memory.hit(key, window, time.Now())
		return n, resetIn, nil
	}
	res, err := hitScript.Run(ctx, l.redis, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	return int(res[0]), time.Duration(res[1]) * time.Millisecond, nil
}

// windowCounter is the in-process fallback. Expired windows are pruned
// while counting, at most once per pruneEvery.
type windowCounter struct {
	mu        sync.Mutex
	windows   map[string]counterWindow
	lastPrune time.Time
}

type counterWindow struct {
	count   int
	resetAt time.Time
}

const pruneEvery = time.Minute

func newWindowCounter() *windowCounter {
	return &windowCounter{windows: make(map[string]counterWindow)}
}

func (w *windowCounter) hit(key string, window time.Duration, now time.Time) (int, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.lastPrune) >= pruneEvery {
		for k, cw := range w.windows {
			if !now.Before(cw.resetAt) {
				delete(w.windows, k)
			}
		}
		w.lastPrune = now
	}

	cw, ok := w.windows[key]
	if !ok || !now.Before(cw.resetAt) {
		cw = counterWindow{resetAt: now.Add(window)}
	}
	cw.count++
	w.windows[key] = cw
	return cw.count, cw.resetAt.Sub(now)
}
