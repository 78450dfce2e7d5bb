package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/staylink/concierge/internal/metrics"
)

// ClientLimiter keeps one token bucket per client IP. Idle buckets are
// dropped on the next access after cleanupEvery.
type ClientLimiter struct {
	limit        rate.Limit
	burst        int
	idleAfter    time.Duration
	cleanupEvery time.Duration

	mu          sync.Mutex
	clients     map[string]*client
	lastCleanup time.Time
	now         func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter returns nil when rps <= 0, which RateLimit treats as
// unlimited.
func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = max(1, int(rps))
	}
	return &ClientLimiter{
		limit:        rate.Limit(rps),
		burst:        burst,
		idleAfter:    10 * time.Minute,
		cleanupEvery: time.Minute,
		clients:      make(map[string]*client),
		lastCleanup:  time.Now(),
		now:          time.Now,
	}
}

func (l *ClientLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastCleanup) >= l.cleanupEvery {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.idleAfter {
				delete(l.clients, k)
			}
		}
		l.lastCleanup = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// retryAfterSeconds is the time for one token to refill, rounded up.
func (l *ClientLimiter) retryAfterSeconds() int {
	return max(1, int(math.Ceil(1/float64(l.limit))))
}

func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func RateLimit(l *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRateLimitedTotal.WithLabelValues(route).Inc()
		c.Header("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": gin.H{
				"code":    "RATE_LIMITED",
				"message": "Too many requests",
			},
		})
	}
}
