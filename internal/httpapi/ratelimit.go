package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit bounds requests per user; a zero PerMinute disables limiting.
type RateLimit struct {
	PerMinute int
	Burst     int
}

const limiterTTL = 15 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type userLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	entries     map[string]*limiterEntry
	lastCleanup time.Time
	now         func() time.Time
}

func newUserLimiter(cfg RateLimit) *userLimiter {
	if cfg.PerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &userLimiter{
		limit:       rate.Every(time.Minute / time.Duration(cfg.PerMinute)),
		burst:       burst,
		entries:     make(map[string]*limiterEntry),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (l *userLimiter) allow(key string) bool {
	if l == nil || key == "" {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastCleanup) >= limiterTTL {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > limiterTTL {
				delete(l.entries, k)
			}
		}
		l.lastCleanup = now
	}
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// limitByUser rejects requests over the per-user budget with 429.
func (s *Server) limitByUser(l *userLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.Query("user")) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": "error", "error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
