package handler

import (
	"context"

	"merchant-wallet-engine/internal/adapter/http/dto"
	"merchant-wallet-engine/internal/adapter/http/middleware"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SegregationHandler moves funds between wallets and bank accounts.
type SegregationHandler struct {
	segregationSvc ports.SegregationService
}

// NewSegregationHandler creates a new SegregationHandler.
func NewSegregationHandler(segregationSvc ports.SegregationService) *SegregationHandler {
	return &SegregationHandler{segregationSvc: segregationSvc}
}

// Sweep handles POST /api/v1/segregation/sweep.
func (h *SegregationHandler) Sweep(c *gin.Context) {
	h.transfer(c, h.segregationSvc.SweepToBank, false)
}

// Fund handles POST /api/v1/segregation/fund. The request waits for admin approval.
func (h *SegregationHandler) Fund(c *gin.Context) {
	h.transfer(c, h.segregationSvc.FundFromBank, true)
}

func (h *SegregationHandler) transfer(c *gin.Context, op func(context.Context, ports.TransferRequest) (*ports.TransferResult, error), pending bool) {
	id, ok := merchantID(c)
	if !ok {
		return
	}
	var req dto.TransferRequest
	if !bindJSON(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)
	accountID, ok := parseUUID(c, req.BankAccountID, "bank_account_id")
	if !ok {
		return
	}

	result, err := op(c.Request.Context(), ports.TransferRequest{
		MerchantID:    id,
		Amount:        req.Amount,
		Currency:      domain.Currency(req.Currency),
		BankAccountID: accountID,
		Note:          req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if pending {
		response.Accepted(c, result)
		return
	}
	response.Created(c, result)
}

// Status handles GET /api/v1/segregation/status.
func (h *SegregationHandler) Status(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	status, err := h.segregationSvc.Status(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// ApproveFunding handles POST /api/v1/admin/fundings/:ref/approve.
func (h *SegregationHandler) ApproveFunding(c *gin.Context) {
	result, err := h.segregationSvc.ApproveFunding(c.Request.Context(), c.Param("ref"), middleware.ActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// RejectFunding handles POST /api/v1/admin/fundings/:ref/reject.
func (h *SegregationHandler) RejectFunding(c *gin.Context) {
	var req dto.RejectRequest
	if !bindJSON(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.segregationSvc.RejectFunding(c.Request.Context(), c.Param("ref"), middleware.ActorID(c), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// AutoSweep handles POST /api/v1/admin/segregation/auto-sweep. Without a
// merchant it sweeps every merchant above a trigger and reports failures
// per merchant.
func (h *SegregationHandler) AutoSweep(c *gin.Context) {
	var req dto.AutoSweepRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	if req.MerchantID != nil {
		id, ok := parseUUID(c, *req.MerchantID, "merchant_id")
		if !ok {
			return
		}
		result, err := h.segregationSvc.AutoSweep(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, result)
		return
	}

	merchants, err := h.segregationSvc.MerchantsRequiringSweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	summary := dto.AutoSweepAllResponse{Merchants: len(merchants)}
	for _, id := range merchants {
		result, err := h.segregationSvc.AutoSweep(c.Request.Context(), id)
		if err != nil {
			summary.Failures = append(summary.Failures, failure(id, err))
			continue
		}
		summary.Swept += len(result.Sweeps)
		for _, f := range result.Failed {
			summary.Failures = append(summary.Failures, id.String()+": "+f)
		}
	}
	response.OK(c, summary)
}

func failure(id uuid.UUID, err error) string {
	return id.String() + ": " + err.Error()
}
