package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"merchant-wallet-engine/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type callbackFixture struct {
	sig    *mocks.MockSignatureService
	nonces *mocks.MockNonceStore
	router *gin.Engine
	hits   []string
}

func newCallbackFixture(t *testing.T) *callbackFixture {
	ctrl := gomock.NewController(t)
	f := &callbackFixture{
		sig:    mocks.NewMockSignatureService(ctrl),
		nonces: mocks.NewMockNonceStore(ctrl),
		router: gin.New(),
	}
	secrets := map[string]string{"mpesa": "mpesa-secret", "orange_money": "orange-secret"}
	f.router.POST("/callbacks/:operator", CallbackAuth(secrets, f.sig, f.nonces, time.Minute, zerolog.Nop()),
		func(c *gin.Context) {
			f.hits = append(f.hits, c.GetString(CtxOperator)+"|"+ActorID(c))
			c.Status(http.StatusOK)
		})
	return f
}

func (f *callbackFixture) post(operator, body, signature string, ts time.Time, nonce string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callbacks/"+operator, strings.NewReader(body))
	if signature != "" {
		req.Header.Set(HeaderSignature, signature)
	}
	if !ts.IsZero() {
		req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts.Unix(), 10))
	}
	if nonce != "" {
		req.Header.Set(HeaderNonce, nonce)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCallbackAuth_RejectedBeforeSignature(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		operator string
		sig      string
		ts       time.Time
		nonce    string
		status   int
		code     string
	}{
		{"unknown operator", "paypal", "ab", now, "n1", http.StatusUnauthorized, "SEC_001"},
		{"missing signature", "mpesa", "", now, "n1", http.StatusUnauthorized, "SEC_002"},
		{"missing nonce", "mpesa", "ab", now, "", http.StatusUnauthorized, "SEC_002"},
		{"missing timestamp", "mpesa", "ab", time.Time{}, "n1", http.StatusUnauthorized, "SEC_002"},
		{"stale timestamp", "mpesa", "ab", now.Add(-2 * time.Minute), "n1", http.StatusForbidden, "SEC_003"},
		{"future timestamp", "mpesa", "ab", now.Add(2 * time.Minute), "n1", http.StatusForbidden, "SEC_003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCallbackFixture(t)
			w := f.post(tt.operator, "{}", tt.sig, tt.ts, tt.nonce)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
			assert.Empty(t, f.hits)
		})
	}
}

func TestCallbackAuth_ForgedSignatureKeepsNonce(t *testing.T) {
	f := newCallbackFixture(t)
	ts := time.Now()
	f.sig.EXPECT().BuildCanonicalString("POST", "/callbacks/mpesa", ts.Unix(), "n-forged", "{}").Return("canonical")
	f.sig.EXPECT().Verify("mpesa-secret", "canonical", "deadbeef").Return(false)

	w := f.post("mpesa", "{}", "deadbeef", ts, "n-forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, f.hits)
}

func TestCallbackAuth_ReplayRejected(t *testing.T) {
	f := newCallbackFixture(t)
	f.sig.EXPECT().BuildCanonicalString(gomock.Any(), gomock.Any(), gomock.Any(), "n-1", gomock.Any()).Return("canonical")
	f.sig.EXPECT().Verify("orange-secret", "canonical", "cafe").Return(true)
	f.nonces.EXPECT().CheckAndSet(gomock.Any(), "orange_money", "n-1", 2*time.Minute).Return(false, nil)

	w := f.post("ORANGE_MONEY", "{}", "cafe", time.Now(), "n-1")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "SEC_004")
}

func TestCallbackAuth_AcceptsSignedCallback(t *testing.T) {
	f := newCallbackFixture(t)
	body := `{"transaction_ref":"TXN-01J9Z","status":"success"}`
	ts := time.Now()
	f.sig.EXPECT().BuildCanonicalString("POST", "/callbacks/mpesa", ts.Unix(), "n-2", body).Return("canonical")
	f.sig.EXPECT().Verify("mpesa-secret", "canonical", "cafe").Return(true)
	f.nonces.EXPECT().CheckAndSet(gomock.Any(), "mpesa", "n-2", 2*time.Minute).Return(true, nil)

	w := f.post("mpesa", body, "cafe", ts, "n-2")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"mpesa|operator:mpesa"}, f.hits)
}

func TestCallbackAuth_NonceStoreDownFailsOpen(t *testing.T) {
	f := newCallbackFixture(t)
	f.sig.EXPECT().BuildCanonicalString(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("canonical")
	f.sig.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(true)
	f.nonces.EXPECT().CheckAndSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, errors.New("dial tcp 127.0.0.1:6379: connection refused"))

	w := f.post("mpesa", "{}", "cafe", time.Now(), "n-3")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.hits, 1)
}

func TestCallbackVerifier_FreshWindow(t *testing.T) {
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	v := callbackVerifier{maxSkew: time.Minute, now: func() time.Time { return now }}

	assert.True(t, v.fresh(now.Unix()))
	assert.True(t, v.fresh(now.Add(-time.Minute).Unix()))
	assert.True(t, v.fresh(now.Add(time.Minute).Unix()))
	assert.False(t, v.fresh(now.Add(-61*time.Second).Unix()))
	assert.False(t, v.fresh(now.Add(61*time.Second).Unix()))
}
