package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err (or anything it wraps) is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Stable error codes.
const (
	CodeInsufficientBalance        = "WAL_001"
	CodeFrozenWallet               = "WAL_002"
	CodeCurrencyMismatch           = "WAL_003"
	CodeLockExpiredOrNotFound      = "FX_001"
	CodeBelowMinimumThreshold      = "SEG_001"
	CodeCeilingExceeded            = "SEG_002"
	CodeNotFoundOrAlreadyProcessed = "TXN_001"
	CodeValidation                 = "VAL_001"
	CodeExternalSettlement         = "EXT_001"
	CodeNotFound                   = "RES_001"
	CodeInternal                   = "SYS_001"
	CodeLockTimeout                = "SYS_002"
	CodeEncryption                 = "SYS_003"

	CodeUnknownOperator   = "SEC_001"
	CodeInvalidSignature  = "SEC_002"
	CodeTimestampExpired  = "SEC_003"
	CodeNonceUsed         = "SEC_004"
	CodeInvalidToken      = "AUTH_003"
	CodeMerchantSuspended = "AUTH_004"
	CodeForbidden         = "AUTH_005"
	CodeRateLimited       = "RATE_001"
)

// ---- Wallet (WAL) ----

func ErrInsufficientBalance(currency string) *AppError {
	return New(CodeInsufficientBalance, fmt.Sprintf("Insufficient %s balance", currency), http.StatusPaymentRequired)
}

func ErrFrozenWallet(reason string) *AppError {
	msg := "Wallet is frozen"
	if reason != "" {
		msg = fmt.Sprintf("Wallet is frozen: %s", reason)
	}
	return New(CodeFrozenWallet, msg, http.StatusLocked)
}

func ErrCurrencyMismatch(message string) *AppError {
	return New(CodeCurrencyMismatch, message, http.StatusUnprocessableEntity)
}

// ---- Exchange (FX) ----

func ErrLockExpiredOrNotFound() *AppError {
	return New(CodeLockExpiredOrNotFound, "Rate lock expired or not found", http.StatusGone)
}

// ---- Segregation thresholds (SEG) ----

func ErrBelowMinimumThreshold(message string) *AppError {
	return New(CodeBelowMinimumThreshold, message, http.StatusUnprocessableEntity)
}

func ErrCeilingExceeded(message string) *AppError {
	return New(CodeCeilingExceeded, message, http.StatusUnprocessableEntity)
}

// ---- Transactions (TXN) ----

func ErrNotFoundOrAlreadyProcessed(ref string) *AppError {
	return New(CodeNotFoundOrAlreadyProcessed, fmt.Sprintf("Transaction %s not found or already processed", ref), http.StatusConflict)
}

// ---- External settlement (EXT) ----

func ErrExternalSettlement(message string, err error) *AppError {
	return Wrap(CodeExternalSettlement, message, http.StatusBadGateway, err)
}

// ---- Resources (RES) ----

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Security & Authentication (SEC) ----

func ErrUnknownOperator() *AppError {
	return New(CodeUnknownOperator, "Unknown callback operator", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New(CodeInvalidSignature, "Invalid signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New(CodeTimestampExpired, "Request timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New(CodeNonceUsed, "Nonce has already been used", http.StatusForbidden)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrMerchantSuspended() *AppError {
	return New(CodeMerchantSuspended, "Merchant account is suspended", http.StatusForbidden)
}

func ErrForbidden() *AppError {
	return New(CodeForbidden, "Insufficient role for this operation", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap(CodeLockTimeout, "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap(CodeEncryption, "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a VAL_001 validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}
