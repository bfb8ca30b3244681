package handler

import (
	"strconv"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"
	"merchant-wallet-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles transaction history and statistics.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// GetStats handles GET /api/v1/statistics.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	stats, err := h.reportingSvc.Statistics(c.Request.Context(), id, c.DefaultQuery("period", "month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// ListTransactions handles GET /api/v1/transactions.
// Filters: status, type, currency, from and to (RFC 3339), page, page_size.
func (h *DashboardHandler) ListTransactions(c *gin.Context) {
	id, ok := merchantID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	params := ports.TransactionListParams{
		MerchantID: id,
		Page:       page,
		PageSize:   pageSize,
	}

	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}
	if t := c.Query("type"); t != "" {
		txType := domain.TransactionType(t)
		params.Type = &txType
	}
	if ccy := c.Query("currency"); ccy != "" {
		currency := domain.Currency(ccy)
		params.Currency = &currency
	}
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{{"from", &params.From}, {"to", &params.To}} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, apperror.Validation(q.name+" must be an RFC 3339 timestamp"))
			return
		}
		*q.dst = &v
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The service clamps paging; echo what it used.
	if params.Page < 1 {
		params.Page = 1
	}
	switch {
	case params.PageSize <= 0:
		params.PageSize = 20
	case params.PageSize > 100:
		params.PageSize = 100
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	response.Paginated(c, txns, params.Page, params.PageSize, total)
}
