package middleware

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"merchant-wallet-engine/internal/core/ports"
	"merchant-wallet-engine/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"

	DefaultMaxClockSkew = 60 * time.Second
)

// CallbackAuth authenticates operator settlement callbacks on
// /callbacks/:operator. Each operator signs with its own shared secret:
//
//	X-Signature = hex(HMAC-SHA256(secret, canonical request))
//
// A request passes when the operator is known, X-Timestamp is within
// maxSkew of now, the signature matches, and X-Nonce was not seen in the
// last 2*maxSkew. Nonces are only consumed by correctly signed requests.
func CallbackAuth(
	secrets map[string]string,
	sigSvc ports.SignatureService,
	nonceStore ports.NonceStore,
	maxSkew time.Duration,
	log zerolog.Logger,
) gin.HandlerFunc {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxClockSkew
	}
	v := callbackVerifier{
		secrets: secrets,
		sigSvc:  sigSvc,
		nonces:  nonceStore,
		maxSkew: maxSkew,
		now:     time.Now,
		log:     log,
	}
	return func(c *gin.Context) {
		operator, err := v.verify(c)
		if err != nil {
			abort(c, err)
			return
		}
		c.Set(CtxOperator, operator)
		c.Set(CtxActorID, "operator:"+operator)
		c.Next()
	}
}

type callbackVerifier struct {
	secrets map[string]string
	sigSvc  ports.SignatureService
	nonces  ports.NonceStore
	maxSkew time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func (v callbackVerifier) verify(c *gin.Context) (string, *apperror.AppError) {
	operator := strings.ToLower(c.Param("operator"))
	secret := v.secrets[operator]
	if secret == "" {
		return "", apperror.ErrUnknownOperator()
	}

	signature, nonce := c.GetHeader(HeaderSignature), c.GetHeader(HeaderNonce)
	rawTS := c.GetHeader(HeaderTimestamp)
	if signature == "" || nonce == "" || rawTS == "" {
		return "", apperror.ErrInvalidSignature()
	}
	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil || !v.fresh(ts) {
		return "", apperror.ErrTimestampExpired()
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", apperror.Validation("cannot read request body")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	canonical := v.sigSvc.BuildCanonicalString(c.Request.Method, c.Request.URL.Path, ts, nonce, string(body))
	if !v.sigSvc.Verify(secret, canonical, signature) {
		v.log.Warn().Str("operator", operator).Str("client_ip", c.ClientIP()).Msg("callback signature rejected")
		return "", apperror.ErrInvalidSignature()
	}

	fresh, err := v.nonces.CheckAndSet(c.Request.Context(), operator, nonce, 2*v.maxSkew)
	switch {
	case err != nil:
		v.log.Warn().Err(err).Str("operator", operator).Msg("nonce store unavailable, replay check skipped")
	case !fresh:
		return "", apperror.ErrNonceUsed()
	}
	return operator, nil
}

func (v callbackVerifier) fresh(unix int64) bool {
	drift := v.now().Sub(time.Unix(unix, 0))
	return drift <= v.maxSkew && drift >= -v.maxSkew
}
