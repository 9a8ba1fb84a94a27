package middleware

import (
	"net/http"
	"sync"
	"time"

	apiContext "promptdeck/internal/api/context"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/auth"
	"promptdeck/internal/platform/config"
)

type RateLimiter struct {
	store  *sync.Map // map[string]*bucket
	limits config.RateLimitConfig
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
	mu         sync.Mutex
}

func NewRateLimiter(limits config.RateLimitConfig) *RateLimiter {
	if limits.APIReadPerMinute <= 0 {
		limits.APIReadPerMinute = 1000
	}
	if limits.APIWritePerMinute <= 0 {
		limits.APIWritePerMinute = 100
	}

	rl := &RateLimiter{
		store:  &sync.Map{},
		limits: limits,
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		rl.store.Range(func(key, value interface{}) bool {
			b := value.(*bucket)
			b.mu.Lock()
			if now.Sub(b.lastAccess) > 10*time.Minute {
				rl.store.Delete(key)
			}
			b.mu.Unlock()
			return true
		})
	}
}

func (rl *RateLimiter) allow(key string, limit int) bool {
	now := time.Now()

	val, _ := rl.store.LoadOrStore(key, &bucket{
		tokens:     limit,
		lastRefill: now,
		lastAccess: now,
	})

	b := val.(*bucket)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastAccess = now

	// Refill proportionally to elapsed time, one window per minute.
	elapsed := now.Sub(b.lastRefill)
	refill := int(elapsed.Minutes() * float64(limit))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > limit {
			b.tokens = limit
		}
		b.lastRefill = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Handle limits per authenticated user; unauthenticated requests share a
// bucket keyed by remote address.
func (rl *RateLimiter) Handle(class string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			limit := rl.limits.APIReadPerMinute
			if class == "api_write" {
				limit = rl.limits.APIWritePerMinute
			}

			key := class + ":" + r.RemoteAddr
			if claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims); ok {
				key = class + ":" + claims.UserID
			}

			if !rl.allow(key, limit) {
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
				return
			}

			next(w, r)
		}
	}
}
