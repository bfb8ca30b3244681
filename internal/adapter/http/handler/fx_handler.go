package handler

import (
	"time"

	"merchant-wallet-engine/internal/adapter/http/dto"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// FXHandler serves exchange rates, rate locks and conversions.
type FXHandler struct {
	rateSvc       ports.ExchangeRateService
	conversionSvc ports.ConversionService
	now           func() time.Time
}

// NewFXHandler creates a new FXHandler.
func NewFXHandler(rateSvc ports.ExchangeRateService, conversionSvc ports.ConversionService) *FXHandler {
	return &FXHandler{rateSvc: rateSvc, conversionSvc: conversionSvc, now: time.Now}
}

// Rates handles GET /api/v1/fx/rates.
func (h *FXHandler) Rates(c *gin.Context) {
	response.OK(c, h.rateSvc.Rates())
}

// Lock handles POST /api/v1/fx/locks.
func (h *FXHandler) Lock(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}
	var req dto.RateLockRequest
	if !bindJSON(c, &req) {
		return
	}

	lock, err := h.conversionSvc.LockRate(c.Request.Context(), id, domain.Currency(req.From), domain.Currency(req.To))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewRateLockResponse(lock, h.now()))
}

// ExecuteLock handles POST /api/v1/fx/locks/:lockId/execute.
func (h *FXHandler) ExecuteLock(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	result, err := h.conversionSvc.ExecuteLocked(c.Request.Context(), id, c.Param("lockId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Convert handles POST /api/v1/fx/convert.
func (h *FXHandler) Convert(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}
	var req dto.ConvertRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.conversionSvc.Convert(c.Request.Context(), id, req.Amount, domain.Currency(req.From), domain.Currency(req.To))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Refresh handles POST /api/v1/admin/fx/refresh. A failed fetch still
// answers 200 with the cached or fallback table and its source.
func (h *FXHandler) Refresh(c *gin.Context) {
	refreshErr := h.rateSvc.Refresh(c.Request.Context())
	body := gin.H{"rates": h.rateSvc.Rates()}
	if refreshErr != nil {
		body["warning"] = refreshErr.Error()
	}
	response.OK(c, body)
}
