package middleware

import (
	"net/http"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
	param        string // path parameter holding the resource id
}

// auditedRoutes maps admin write routes to audit actions.
var auditedRoutes = map[string]auditRoute{
	"/api/v1/admin/wallets/:merchantId":          {domain.AuditActionOpenWallet, "wallet", "merchantId"},
	"/api/v1/admin/wallets/:merchantId/freeze":   {domain.AuditActionFreezeWallet, "wallet", "merchantId"},
	"/api/v1/admin/wallets/:merchantId/unfreeze": {domain.AuditActionUnfreezeWallet, "wallet", "merchantId"},
	"/api/v1/admin/bank-accounts/:id/verify":     {domain.AuditActionVerifyBankAccount, "bank_account", "id"},
	"/api/v1/admin/fundings/:ref/approve":        {domain.AuditActionApproveFunding, "transaction", "ref"},
	"/api/v1/admin/fundings/:ref/reject":         {domain.AuditActionRejectFunding, "transaction", "ref"},
	"/api/v1/admin/segregation/auto-sweep":       {domain.AuditActionAutoSweep, "wallet", ""},
	"/api/v1/admin/withdrawals/batches":          {domain.AuditActionGenerateBatch, "withdrawal_batch", ""},
	"/api/v1/admin/withdrawals/:ref/complete":    {domain.AuditActionCompleteWithdraw, "transaction", "ref"},
	"/api/v1/admin/withdrawals/:ref/reject":      {domain.AuditActionRejectWithdraw, "transaction", "ref"},
	"/api/v1/admin/fx/refresh":                   {domain.AuditActionRefreshRates, "exchange_rate", ""},
}

// AuditLog records successful admin writes after the handler has run.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		route, ok := auditedRoutes[c.FullPath()]
		if !ok {
			return
		}

		entry := ports.AuditEntry{
			ActorID:      ActorID(c),
			Action:       route.action,
			ResourceType: route.resourceType,
			IPAddress:    c.ClientIP(),
			Details: map[string]interface{}{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     c.Writer.Status(),
				"request_id": c.GetString(CtxRequestID),
			},
		}
		if route.param != "" {
			entry.ResourceID = c.Param(route.param)
			if route.param == "merchantId" {
				if id, err := uuid.Parse(entry.ResourceID); err == nil {
					entry.MerchantID = &id
				}
			}
		}
		auditSvc.Log(c.Request.Context(), entry)
	}
}
