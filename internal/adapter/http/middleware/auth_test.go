package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type authSeen struct {
	merchant    uuid.UUID
	hasMerchant bool
	actor       string
}

func authRouter(tokenSvc ports.TokenService, role string, seen *authSeen) *gin.Engine {
	r := gin.New()
	r.GET("/resource", JWTAuth(tokenSvc, zerolog.Nop()), RequireRole(role), func(c *gin.Context) {
		seen.merchant, seen.hasMerchant = MerchantID(c)
		seen.actor = ActorID(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func getWithAuth(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_RejectsMalformedHeaders(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService(gomock.NewController(t))
	r := authRouter(tokenSvc, ports.RoleMerchant, &authSeen{})

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic dXNlcjpwYXNz", "bearer abc"} {
		w := getWithAuth(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Contains(t, w.Body.String(), "AUTH_003")
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService(gomock.NewController(t))
	tokenSvc.EXPECT().Validate("expired.jwt.value").Return(nil, assert.AnError)

	w := getWithAuth(authRouter(tokenSvc, ports.RoleMerchant, &authSeen{}), "Bearer expired.jwt.value")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_MerchantToken(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService(gomock.NewController(t))
	merchant := uuid.New()
	tokenSvc.EXPECT().Validate("m.jwt").Return(&ports.TokenClaims{
		Subject: "merchant:" + merchant.String(), Role: ports.RoleMerchant, MerchantID: merchant,
	}, nil)

	var seen authSeen
	w := getWithAuth(authRouter(tokenSvc, ports.RoleMerchant, &seen), "Bearer m.jwt")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, seen.hasMerchant)
	assert.Equal(t, merchant, seen.merchant)
	assert.Equal(t, "merchant:"+merchant.String(), seen.actor)
}

func TestJWTAuth_AdminTokenCarriesNoMerchant(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService(gomock.NewController(t))
	tokenSvc.EXPECT().Validate("a.jwt").Return(&ports.TokenClaims{Subject: "ops-1", Role: ports.RoleAdmin}, nil)

	var seen authSeen
	w := getWithAuth(authRouter(tokenSvc, ports.RoleAdmin, &seen), "Bearer a.jwt")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, seen.hasMerchant)
	assert.Equal(t, "ops-1", seen.actor)
}

func TestRequireRole_RejectsOtherRole(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService(gomock.NewController(t))
	tokenSvc.EXPECT().Validate("m.jwt").Return(&ports.TokenClaims{
		Subject: "merchant-1", Role: ports.RoleMerchant, MerchantID: uuid.New(),
	}, nil)

	w := getWithAuth(authRouter(tokenSvc, ports.RoleAdmin, &authSeen{}), "Bearer m.jwt")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005")
}
