package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter membatasi request dengan sliding window sederhana. Kuota
// dihitung per IP per store supaya satu tenant yang ramai tidak menghabiskan
// kuota tenant lain di balik alamat yang sama.
type RateLimiter struct {
	rate     int
	interval time.Duration
	hits     map[string][]time.Time
	mu       sync.Mutex
}

func NewRateLimiter(rate int, interval int) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: time.Duration(interval) * time.Second,
		hits:     make(map[string][]time.Time),
	}
}

// NewStrictRateLimiter membatasi percobaan login/register: token bucket
// 5 percobaan per menit per IP.
func NewStrictRateLimiter() gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(rate.Every(time.Minute/5), 5)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many attempts, please try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) clientKey(c *gin.Context) string {
	key := c.ClientIP()
	if storeID := c.GetHeader("X-Store-ID"); storeID != "" {
		key += "|" + storeID
	}
	return key
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.clientKey(c)

		rl.mu.Lock()
		now := time.Now()
		cutoff := now.Add(-rl.interval)

		valid := rl.hits[key][:0]
		for _, ts := range rl.hits[key] {
			if ts.After(cutoff) {
				valid = append(valid, ts)
			}
		}

		if len(valid) >= rl.rate {
			rl.hits[key] = valid
			rl.mu.Unlock()
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}

		rl.hits[key] = append(valid, now)
		rl.mu.Unlock()

		c.Next()
	}
}
