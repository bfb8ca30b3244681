package service

import (
	"fmt"
	"time"

	"merchant-wallet-engine/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT. Tokens are
// normally minted by the onboarding service; Generate exists for operators
// and tests that need a token signed with the shared secret.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// walletClaims carries the caller's role and, for merchants, the merchant id.
type walletClaims struct {
	Role       string `json:"role"`
	MerchantID string `json:"mid,omitempty"`
	jwt.RegisteredClaims
}

func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

// Generate signs a token for subject. Merchant tokens must carry merchantID.
func (s *JWTTokenService) Generate(subject string, role string, merchantID *uuid.UUID) (string, time.Time, error) {
	if role != ports.RoleMerchant && role != ports.RoleAdmin {
		return "", time.Time{}, fmt.Errorf("unknown role %q", role)
	}
	if role == ports.RoleMerchant && merchantID == nil {
		return "", time.Time{}, fmt.Errorf("merchant token requires a merchant id")
	}

	now := time.Now()
	expiresAt := now.Add(s.expiry)
	claims := walletClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if merchantID != nil {
		claims.MerchantID = merchantID.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate parses and validates a JWT token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	var claims walletClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("missing subject claim")
	}

	out := &ports.TokenClaims{Subject: claims.Subject, Role: claims.Role}
	switch claims.Role {
	case ports.RoleAdmin:
	case ports.RoleMerchant:
		id, err := uuid.Parse(claims.MerchantID)
		if err != nil {
			return nil, fmt.Errorf("invalid merchant ID in token: %w", err)
		}
		out.MerchantID = id
	default:
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return out, nil
}
