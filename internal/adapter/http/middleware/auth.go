package middleware

import (
	"strings"

	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const bearerPrefix = "Bearer "

// JWTAuth admits requests carrying a valid bearer token and stores the
// subject and role. Merchant tokens also set the merchant id.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), bearerPrefix)
		if !found || strings.TrimSpace(token) == "" {
			abort(c, apperror.ErrInvalidToken())
			return
		}
		claims, err := tokenSvc.Validate(strings.TrimSpace(token))
		if err != nil {
			log.Debug().Err(err).Str("client_ip", c.ClientIP()).Msg("bearer token rejected")
			abort(c, apperror.ErrInvalidToken())
			return
		}

		c.Set(CtxActorID, claims.Subject)
		c.Set(CtxRole, claims.Role)
		if claims.Role == ports.RoleMerchant {
			c.Set(CtxMerchantID, claims.MerchantID)
		}
		c.Next()
	}
}

// RequireRole runs after JWTAuth and admits a single role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRole) != role {
			abort(c, apperror.ErrForbidden())
			return
		}
		c.Next()
	}
}

// MerchantID is the authenticated merchant, if the caller is one.
func MerchantID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := c.Value(CtxMerchantID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// ActorID is the token subject, or "operator:<code>" on callbacks.
func ActorID(c *gin.Context) string {
	return c.GetString(CtxActorID)
}

func abort(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err)
	c.Abort()
}
