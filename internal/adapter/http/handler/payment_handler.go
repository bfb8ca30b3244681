package handler

import (
	"time"

	"merchant-wallet-engine/internal/adapter/http/dto"
	"merchant-wallet-engine/internal/adapter/http/middleware"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles collections and operator callbacks.
type PaymentHandler struct {
	settlementSvc ports.SettlementService
	expiryBatch   int
	now           func() time.Time
}

// NewPaymentHandler creates a new PaymentHandler. expiryBatch bounds one
// manual expiry run.
func NewPaymentHandler(settlementSvc ports.SettlementService, expiryBatch int) *PaymentHandler {
	return &PaymentHandler{settlementSvc: settlementSvc, expiryBatch: expiryBatch, now: time.Now}
}

// InitiateCollection handles POST /api/v1/collections. The result arrives
// later through the operator callback.
func (h *PaymentHandler) InitiateCollection(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}
	var req dto.CollectionRequest
	if !bindJSON(c, &req) {
		return
	}

	txn, err := h.settlementSvc.InitiateCollection(c.Request.Context(), ports.CollectionRequest{
		MerchantID:    id,
		Amount:        req.Amount,
		Currency:      domain.Currency(req.Currency),
		Method:        domain.PaymentMethod(req.Method),
		OrderID:       req.OrderID,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, txn)
}

// Callback handles POST /api/v1/callbacks/:operator. CallbackAuth has
// already verified the signature and the nonce.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req dto.PaymentCallback
	if !bindJSON(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	var merchant uuid.UUID
	if req.MerchantID != "" {
		id, ok := parseUUID(c, req.MerchantID, "merchant_id")
		if !ok {
			return
		}
		merchant = id
	}

	outcome, err := h.settlementSvc.HandlePaymentResult(c.Request.Context(), ports.PaymentResult{
		TransactionRef: req.TransactionRef,
		MerchantID:     merchant,
		OrderID:        req.OrderID,
		Operator:       domain.PaymentMethod(c.GetString(middleware.CtxOperator)),
		ExternalRef:    req.ExternalRef,
		Success:        req.Status == "success",
		Amount:         req.Amount,
		Currency:       domain.Currency(req.Currency),
		FailureReason:  req.FailureReason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, outcome)
}

// ExpireStale handles POST /api/v1/admin/collections/expire.
func (h *PaymentHandler) ExpireStale(c *gin.Context) {
	n, err := h.settlementSvc.ExpireStale(c.Request.Context(), h.now().UTC(), h.expiryBatch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ExpiredCollectionsResponse{Expired: n})
}
