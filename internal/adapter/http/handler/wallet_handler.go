package handler

import (
	"merchant-wallet-engine/internal/adapter/http/dto"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles balance queries and administrative wallet actions.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, balance)
}

// Open handles POST /api/v1/admin/wallets/:merchantId.
func (h *WalletHandler) Open(c *gin.Context) {
	id, ok := uuidParam(c, "merchantId")
	if !ok {
		return
	}

	wallet, err := h.walletSvc.OpenWallet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, wallet)
}

// Freeze handles POST /api/v1/admin/wallets/:merchantId/freeze.
func (h *WalletHandler) Freeze(c *gin.Context) {
	id, ok := uuidParam(c, "merchantId")
	if !ok {
		return
	}
	var req dto.FreezeRequest
	if !bindJSON(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.walletSvc.Freeze(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallet)
}

// Unfreeze handles POST /api/v1/admin/wallets/:merchantId/unfreeze.
func (h *WalletHandler) Unfreeze(c *gin.Context) {
	id, ok := uuidParam(c, "merchantId")
	if !ok {
		return
	}

	wallet, err := h.walletSvc.Unfreeze(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallet)
}
