// Package response writes the JSON envelopes shared by every endpoint.
package response

import (
	"errors"
	"net/http"
	"time"

	"merchant-wallet-engine/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key the request-id middleware fills.
const RequestIDKey = "request_id"

type SuccessResponse struct {
	Data      any       `json:"data"`
	Meta      *PageMeta `json:"meta,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp string    `json:"timestamp"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

func OK(c *gin.Context, data any)       { write(c, http.StatusOK, data, nil) }
func Created(c *gin.Context, data any)  { write(c, http.StatusCreated, data, nil) }
func Accepted(c *gin.Context, data any) { write(c, http.StatusAccepted, data, nil) }

// Paginated answers 200 with page metadata derived from the total count.
func Paginated(c *gin.Context, data any, page, pageSize int, total int64) {
	meta := &PageMeta{Page: page, PageSize: pageSize, TotalItems: total}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	write(c, http.StatusOK, data, meta)
}

// Error renders err with its AppError code and status. Anything else is a
// 500 whose details stay in the server log: the error is attached to the
// gin context so the request logger can report it.
func Error(c *gin.Context, err error) {
	appErr := new(apperror.AppError)
	if !errors.As(err, &appErr) {
		appErr = apperror.InternalError(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		RequestID: requestID(c),
		Timestamp: timestamp(),
	})
}

func write(c *gin.Context, status int, data any, meta *PageMeta) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		Meta:      meta,
		RequestID: requestID(c),
		Timestamp: timestamp(),
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func requestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return uuid.NewString()
}
