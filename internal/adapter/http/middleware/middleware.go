// Package middleware holds the gin middleware of the public API: request
// tracing, authentication of merchants, admins and operators, rate limits,
// metrics and the admin audit trail.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"merchant-wallet-engine/pkg/apperror"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID = "X-Request-ID"

	CtxMerchantID = "merchant_id"
	CtxActorID    = "actor_id"
	CtxRole       = "role"
	CtxOperator   = "operator"
	CtxRequestID  = response.RequestIDKey

	maxRequestIDLen = 64
)

// RequestID keeps a caller-supplied X-Request-ID of sane length and
// otherwise assigns a UUID. The id is echoed on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger writes one line per request, at warn for 4xx and error for
// 5xx. Errors attached by response.Error are included.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if last := c.Errors.Last(); last != nil {
			event = event.Err(last.Err)
		}
		event.Str("request_id", c.GetString(CtxRequestID)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("actor", ActorID(c)).
			Msg("http request")
	}
}

// Recovery turns a panic into a SYS_001 response and logs the value.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().Interface("panic", r).Str("request_id", c.GetString(CtxRequestID)).
				Str("path", c.Request.URL.Path).Msg("handler panicked")
			response.Error(c, apperror.InternalError(fmt.Errorf("panic: %v", r)))
			c.Abort()
		}()
		c.Next()
	}
}

// MaxBodySize caps the request body. Reading past the cap fails, which
// binding reports as a validation error.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
