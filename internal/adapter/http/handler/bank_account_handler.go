package handler

import (
	"merchant-wallet-engine/internal/adapter/http/dto"
	"merchant-wallet-engine/internal/adapter/http/middleware"
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// BankAccountHandler manages merchant settlement accounts.
type BankAccountHandler struct {
	bankSvc ports.BankAccountService
}

// NewBankAccountHandler creates a new BankAccountHandler.
func NewBankAccountHandler(bankSvc ports.BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{bankSvc: bankSvc}
}

// Register handles POST /api/v1/bank-accounts.
func (h *BankAccountHandler) Register(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}
	var req dto.BankAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.bankSvc.Register(c.Request.Context(), ports.BankAccountRequest{
		MerchantID:    id,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		IBAN:          req.IBAN,
		SwiftCode:     req.SwiftCode,
		Currency:      domain.Currency(req.Currency),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, account)
}

// List handles GET /api/v1/bank-accounts.
func (h *BankAccountHandler) List(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	accounts, err := h.bankSvc.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, accounts)
}

// SetDefault handles PUT /api/v1/bank-accounts/:id/default.
func (h *BankAccountHandler) SetDefault(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}
	accountID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	account, err := h.bankSvc.SetDefault(c.Request.Context(), id, accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, account)
}

// Verify handles POST /api/v1/admin/bank-accounts/:id/verify.
func (h *BankAccountHandler) Verify(c *gin.Context) {
	accountID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	account, err := h.bankSvc.Verify(c.Request.Context(), accountID, middleware.ActorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, account)
}
