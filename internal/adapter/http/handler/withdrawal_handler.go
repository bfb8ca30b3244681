package handler

import (
	"strconv"

	"merchant-wallet-engine/internal/adapter/http/dto"
	"merchant-wallet-engine/internal/adapter/http/middleware"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WithdrawalHandler handles bank payouts.
type WithdrawalHandler struct {
	withdrawalSvc ports.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalSvc ports.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc}
}

// Initiate handles POST /api/v1/withdrawals.
func (h *WithdrawalHandler) Initiate(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}
	var req dto.WithdrawalRequest
	if !bindJSON(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)
	accountID, ok := parseUUID(c, req.BankAccountID, "bank_account_id")
	if !ok {
		return
	}

	result, err := h.withdrawalSvc.Initiate(c.Request.Context(), ports.WithdrawalRequest{
		MerchantID:    id,
		Amount:        req.Amount,
		Currency:      domain.Currency(req.Currency),
		BankAccountID: accountID,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Pending handles GET /api/v1/admin/withdrawals/pending?currency=&limit=.
func (h *WithdrawalHandler) Pending(c *gin.Context) {
	var currency *domain.Currency
	if raw := c.Query("currency"); raw != "" {
		ccy, err := domain.ParseCurrency(raw)
		if err != nil {
			response.Error(c, apperror.Validation("invalid currency"))
			return
		}
		currency = &ccy
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	items, err := h.withdrawalSvc.Pending(c.Request.Context(), currency, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	totals := make(map[domain.Currency]decimal.Decimal)
	for _, t := range items {
		totals[t.Currency] = totals[t.Currency].Add(t.AmountGross)
	}
	resp := dto.PendingWithdrawalsResponse{
		Count:        len(items),
		TotalAmounts: make(map[string]string, len(totals)),
		Items:        items,
	}
	for ccy, total := range totals {
		resp.TotalAmounts[string(ccy)] = total.StringFixed(2)
	}
	response.OK(c, resp)
}

// GenerateBatch handles POST /api/v1/admin/withdrawals/batches.
func (h *WithdrawalHandler) GenerateBatch(c *gin.Context) {
	var req dto.BatchRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	format := ports.BatchFormat(req.Format)
	if format == "" {
		format = ports.BatchFormatAuto
	}

	result, err := h.withdrawalSvc.GenerateBatch(c.Request.Context(), currencyPtr(req.Currency), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Complete handles POST /api/v1/admin/withdrawals/:ref/complete.
func (h *WithdrawalHandler) Complete(c *gin.Context) {
	outcome, err := h.withdrawalSvc.Complete(c.Request.Context(), c.Param("ref"), middleware.ActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, outcome)
}

// Reject handles POST /api/v1/admin/withdrawals/:ref/reject.
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if !bindJSON(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	outcome, err := h.withdrawalSvc.Reject(c.Request.Context(), c.Param("ref"), middleware.ActorID(c), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, outcome)
}
