package handler

import (
	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes read-only ledger queries to admins.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// AccountBalance handles GET /api/v1/admin/ledger/accounts/:account/balance?currency=.
func (h *LedgerHandler) AccountBalance(c *gin.Context) {
	ccy, err := domain.ParseCurrency(c.Query("currency"))
	if err != nil {
		response.Error(c, apperror.Validation("currency query parameter is required"))
		return
	}

	bal, err := h.ledgerSvc.AccountBalance(c.Request.Context(), domain.LedgerAccount(c.Param("account")), ccy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bal)
}

// Entries handles GET /api/v1/admin/ledger/transactions/:ref/entries.
func (h *LedgerHandler) Entries(c *gin.Context) {
	entries, err := h.ledgerSvc.EntriesForTransaction(c.Request.Context(), c.Param("ref"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}
