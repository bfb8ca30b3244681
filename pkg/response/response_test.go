package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"merchant-wallet-engine/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(requestID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if requestID != "" {
		c.Set(RequestIDKey, requestID)
	}
	return c, w
}

func TestSuccessEnvelopes(t *testing.T) {
	tests := []struct {
		name   string
		write  func(*gin.Context, any)
		status int
	}{
		{"ok", OK, http.StatusOK},
		{"created", Created, http.StatusCreated},
		{"accepted", Accepted, http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext("req-wallet-1")
			tt.write(c, map[string]string{"balance_usd": "972.00"})

			assert.Equal(t, tt.status, w.Code)
			var resp SuccessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "req-wallet-1", resp.RequestID)
			assert.NotEmpty(t, resp.Timestamp)
			assert.Nil(t, resp.Meta)
			assert.Equal(t, map[string]any{"balance_usd": "972.00"}, resp.Data)
		})
	}
}

func TestPaginated_RoundsPagesUp(t *testing.T) {
	c, w := newContext("")
	Paginated(c, []string{"TXN-1", "TXN-2"}, 2, 20, 41)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, PageMeta{Page: 2, PageSize: 20, TotalItems: 41, TotalPages: 3}, *resp.Meta)
	assert.NotEmpty(t, resp.RequestID)
}

func TestError_UsesAppErrorCode(t *testing.T) {
	c, w := newContext("req-withdraw-7")
	Error(c, fmt.Errorf("withdraw: %w", apperror.ErrInsufficientBalance("CDF")))

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperror.CodeInsufficientBalance, resp.ErrorCode)
	assert.Equal(t, "Insufficient CDF balance", resp.Message)
	assert.Equal(t, "req-withdraw-7", resp.RequestID)
	assert.Empty(t, c.Errors, "client errors are not attached for logging")
}

func TestError_HidesInternalDetails(t *testing.T) {
	c, w := newContext("")
	Error(c, errors.New("pq: relation ledger_entries does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "ledger_entries")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperror.CodeInternal, resp.ErrorCode)
	require.Len(t, c.Errors, 1)
	assert.ErrorContains(t, c.Errors.Last().Err, "ledger_entries")
}
