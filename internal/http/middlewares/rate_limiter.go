package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Counter counts hits per key in fixed windows. Hit returns the count
// including this hit and the time the window resets.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

type RateLimiter struct {
	counter Counter
	limit   int
	window  time.Duration
	prefix  string
	log     *slog.Logger
}

func NewRateLimiter(counter Counter, prefix string, limit int, window time.Duration, log *slog.Logger) *RateLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimiter{
		counter: counter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
		log:     log,
	}
}

// Middleware enforces the limit for the key derived by keyFn. When the
// counter backend fails the request is let through.
func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		count, resetAt, err := rl.counter.Hit(c.Request.Context(), "ratelimit:"+rl.prefix+":"+key, rl.window)

		if err != nil {
			rl.log.WarnContext(c.Request.Context(), "rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		if count > rl.limit {
			retryAfter := int(time.Until(resetAt).Seconds())

			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests. Please try again shortly.",
			})

			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}

const minSweepAt = 1024

// MemoryCounter keeps fixed-window counters in process memory. Expired
// windows are dropped whenever the map doubles past its last swept size.
type MemoryCounter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	sweepAt int
	now     func() time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		clients: make(map[string]*clientBucket),
		sweepAt: minSweepAt,
		now:     time.Now,
	}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.clients[key]

	if !ok || now.After(b.windowEnd) {
		if !ok && len(m.clients) >= m.sweepAt {
			m.sweep(now)
		}

		b = &clientBucket{windowEnd: now.Add(window)}
		m.clients[key] = b
	}

	b.count++

	return b.count, b.windowEnd, nil
}

// Len is the number of live buckets, expired ones included until the next
// sweep.
func (m *MemoryCounter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *MemoryCounter) sweep(now time.Time) {
	for k, b := range m.clients {
		if now.After(b.windowEnd) {
			delete(m.clients, k)
		}
	}

	m.sweepAt = max(2*len(m.clients), minSweepAt)
}
