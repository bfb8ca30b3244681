package middleware

import (
	"context"
	"strconv"
	"time"

	redisStore "merchant-wallet-engine/internal/adapter/storage/redis"
	"merchant-wallet-engine/pkg/apperror"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateCounter counts one request against key inside a fixed window.
type RateCounter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*redisStore.RateLimitResult, error)
}

type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// RateLimitRules maps an endpoint group to its rule.
type RateLimitRules map[string]RateLimitRule

func DefaultRateLimitRules() RateLimitRules {
	return RateLimitRules{
		"merchant_read":  {Limit: 120, Window: time.Minute},
		"merchant_write": {Limit: 30, Window: time.Minute},
		"fx_lock":        {Limit: 20, Window: time.Minute},
		"admin":          {Limit: 60, Window: time.Minute},
		"callbacks":      {Limit: 600, Window: time.Minute},
	}
}

// WithPerMinute returns a copy with per-minute limits replaced for the named
// groups. A limit of zero or less removes the group, leaving it unlimited.
func (r RateLimitRules) WithPerMinute(limits map[string]int64) RateLimitRules {
	out := make(RateLimitRules, len(r)+len(limits))
	for group, rule := range r {
		out[group] = rule
	}
	for group, limit := range limits {
		if limit <= 0 {
			delete(out, group)
			continue
		}
		out[group] = RateLimitRule{Limit: limit, Window: time.Minute}
	}
	return out
}

// RateLimiter enforces rule for one endpoint group. Counter errors let the
// request through without rate-limit headers.
func RateLimiter(counter RateCounter, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := counter.Allow(c.Request.Context(), group+":"+rateLimitSubject(c), rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limiter unavailable, request allowed")
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt, 10))
		if res.Allowed {
			c.Next()
			return
		}

		h.Set("Retry-After", strconv.FormatInt(max(res.ResetAt-time.Now().Unix(), 1), 10))
		response.Error(c, apperror.ErrRateLimitExceeded())
		c.Abort()
	}
}

// rateLimitSubject is the merchant when authenticated, else the admin or
// operator, else the client IP.
func rateLimitSubject(c *gin.Context) string {
	if id, ok := MerchantID(c); ok {
		return "merchant:" + id.String()
	}
	if actor := ActorID(c); actor != "" {
		return "actor:" + actor
	}
	return "ip:" + c.ClientIP()
}
