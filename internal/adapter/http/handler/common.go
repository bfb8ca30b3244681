package handler

import (
	"merchant-wallet-engine/internal/adapter/http/middleware"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/pkg/apperror"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// merchantID returns the authenticated merchant or writes a 401.
func merchantID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.MerchantID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body into req or writes a 400.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	return true
}

// uuidParam parses a path parameter or writes a 400.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	return parseUUID(c, c.Param(name), name)
}

func parseUUID(c *gin.Context, raw, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(c, apperror.Validation("invalid "+field))
		return uuid.Nil, false
	}
	return id, true
}

func currencyPtr(s *string) *domain.Currency {
	if s == nil || *s == "" {
		return nil
	}
	c := domain.Currency(*s)
	return &c
}
