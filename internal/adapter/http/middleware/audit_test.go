package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func auditRouter(auditSvc ports.AuditService, status int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CtxActorID, "ops-1")
		c.Next()
	})
	r.Use(AuditLog(auditSvc))
	handler := func(c *gin.Context) { c.JSON(status, gin.H{"ok": true}) }
	r.POST("/api/v1/admin/wallets/:merchantId/freeze", handler)
	r.POST("/api/v1/admin/withdrawals/:ref/complete", handler)
	r.GET("/api/v1/admin/withdrawals/pending", handler)
	r.POST("/api/v1/withdrawals", handler)
	return r
}

func TestAuditLog_FreezeWallet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAudit := mocks.NewMockAuditService(ctrl)
	merchantID := uuid.New()

	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry ports.AuditEntry) {
		assert.Equal(t, domain.AuditActionFreezeWallet, entry.Action)
		assert.Equal(t, "wallet", entry.ResourceType)
		assert.Equal(t, merchantID.String(), entry.ResourceID)
		assert.Equal(t, "ops-1", entry.ActorID)
		if assert.NotNil(t, entry.MerchantID) {
			assert.Equal(t, merchantID, *entry.MerchantID)
		}
	})

	w := httptest.NewRecorder()
	auditRouter(mockAudit, http.StatusOK).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/wallets/"+merchantID.String()+"/freeze", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_CompleteWithdrawal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAudit := mocks.NewMockAuditService(ctrl)
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry ports.AuditEntry) {
		assert.Equal(t, domain.AuditActionCompleteWithdraw, entry.Action)
		assert.Equal(t, "TXN-01HX", entry.ResourceID)
		assert.Nil(t, entry.MerchantID)
	})

	w := httptest.NewRecorder()
	auditRouter(mockAudit, http.StatusOK).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/withdrawals/TXN-01HX/complete", nil))
}

func TestAuditLog_Skips(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"read", http.MethodGet, "/api/v1/admin/withdrawals/pending", http.StatusOK},
		{"failed write", http.MethodPost, "/api/v1/admin/withdrawals/TXN-1/complete", http.StatusConflict},
		{"merchant write", http.MethodPost, "/api/v1/withdrawals", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No expectations: Log must not be called.
			mockAudit := mocks.NewMockAuditService(ctrl)
			w := httptest.NewRecorder()
			auditRouter(mockAudit, tt.status).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
