// Package ratelimit throttles the HTTP API and duplex join path using an
// in-memory store that counts requests per key over a fixed period, matching the corpus's use of
// github.com/ulule/limiter/v3 for request rate limiting. A Redis-backed
// store is deliberately not wired here: this spec carries no horizontal
// scale-out requirement (spec.md §1 Non-goals), so there is nothing for a
// distributed limiter store to coordinate across.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/relaymeet/backend/internal/config"
	"github.com/relaymeet/backend/internal/logging"
)

// Limiter holds the rate limiter instances used across the server.
type Limiter struct {
	api  *limiter.Limiter
	join *limiter.Limiter
}

// New builds a Limiter from validated configuration.
func New(cfg *config.Config) (*Limiter, error) {
	apiRate, err := limiter.NewRateFromFormatted(cfg.RateLimitAPI)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_API: %w", err)
	}
	joinRate, err := limiter.NewRateFromFormatted(cfg.RateLimitJoin)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_JOIN: %w", err)
	}

	store := memory.NewStore()
	return &Limiter{
		api:  limiter.New(store, apiRate),
		join: limiter.New(store, joinRate),
	}, nil
}

// APIMiddleware returns Gin middleware enforcing the general API rate limit.
func (l *Limiter) APIMiddleware() gin.HandlerFunc {
	return mgin.NewMiddleware(l.api)
}

// AllowJoin reports whether the given client IP may attempt another
// join-room handshake. Every call counts one attempt against that IP's
// limit for the current period.
func (l *Limiter) AllowJoin(clientIP string) bool {
	res, err := l.join.Get(context.Background(), "join:"+clientIP)
	if err != nil {
		// Fail open: a limiter outage must not take down signaling.
		logging.Warn(context.Background(), "rate limiter store error, allowing join", zap.Error(err))
		return true
	}
	return !res.Reached
}
