package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
)

// RateLimiter хранит token bucket на каждый IP клиента.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rps      rate.Limit
	burst    int
	ttl      time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      10 * time.Minute,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[key] = v
	}
	v.lastSeen = now

	// чистим давно неактивных клиентов
	if len(rl.limiters) > 1024 {
		for k, old := range rl.limiters {
			if now.Sub(old.lastSeen) > rl.ttl {
				delete(rl.limiters, k)
			}
		}
	}
	return v.limiter
}

// Middleware ограничивает частоту запросов с одного IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			sendErrorResponse(c, errors.New(errors.ErrCodeTooManyRequests, "Too many requests, slow down"))
			return
		}
		c.Next()
	}
}
