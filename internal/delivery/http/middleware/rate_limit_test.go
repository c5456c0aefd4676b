package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(limit gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", limit, func(c *gin.Context) {
		c.String(http.StatusOK, c.PostForm("email"))
	})
	return r
}

func postLogin(r *gin.Engine, email string) *httptest.ResponseRecorder {
	body := url.Values{"email": {email}, "password": {"whatever"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.9:5000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCredentialsLimit(t *testing.T) {
	t.Run("Counts per normalized email and IP", func(t *testing.T) {
		r := limitedRouter(NewRateLimiter(nil).Credentials(2, time.Minute))

		assert.Equal(t, http.StatusOK, postLogin(r, "a@example.com").Code)
		assert.Equal(t, http.StatusOK, postLogin(r, " A@Example.com").Code)

		w := postLogin(r, "a@example.com")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		assert.Equal(t, http.StatusOK, postLogin(r, "b@example.com").Code)
	})

	t.Run("Handler still sees the submitted form", func(t *testing.T) {
		r := limitedRouter(NewRateLimiter(nil).Credentials(5, time.Minute))
		w := postLogin(r, "c@example.com")
		assert.Equal(t, "c@example.com", w.Body.String())
	})

	t.Run("Limiters do not share counters", func(t *testing.T) {
		first := limitedRouter(NewRateLimiter(nil).Credentials(1, time.Minute))
		second := limitedRouter(NewRateLimiter(nil).Credentials(1, time.Minute))

		assert.Equal(t, http.StatusOK, postLogin(first, "d@example.com").Code)
		assert.Equal(t, http.StatusOK, postLogin(second, "d@example.com").Code)
	})
}

func TestRedisFailure(t *testing.T) {
	unreachable := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer unreachable.Close()
	limiter := NewRateLimiter(unreachable)

	t.Run("Credentials fail closed", func(t *testing.T) {
		r := limitedRouter(limiter.Credentials(5, time.Minute))
		assert.Equal(t, http.StatusServiceUnavailable, postLogin(r, "e@example.com").Code)
	})

	t.Run("Global falls back to memory", func(t *testing.T) {
		r := limitedRouter(limiter.Global(1, time.Minute))
		assert.Equal(t, http.StatusOK, postLogin(r, "f@example.com").Code)
		assert.Equal(t, http.StatusTooManyRequests, postLogin(r, "f@example.com").Code)
	})
}

func TestWindowCounter(t *testing.T) {
	w := newWindowCounter()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	n, resetIn := w.hit("k", time.Minute, start)
	assert.Equal(t, 1, n)
	assert.Equal(t, time.Minute, resetIn)

	n, resetIn = w.hit("k", time.Minute, start.Add(20*time.Second))
	assert.Equal(t, 2, n)
	assert.Equal(t, 40*time.Second, resetIn)

	n, _ = w.hit("k", time.Minute, start.Add(time.Minute))
	assert.Equal(t, 1, n, "a new window starts at the reset time")

	w.hit("other", time.Second, start.Add(time.Minute))
	w.hit("k", time.Minute, start.Add(3*time.Minute))
	assert.NotContains(t, w.windows, "other", "expired windows are pruned")
}
