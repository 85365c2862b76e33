// Package response renders the JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	deliverycontext "sso/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// SuccessResponse defines the structure for successful responses
type SuccessResponse struct {
	Data any       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

// ErrorResponse defines the structure for error responses
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
	Meta  *MetaInfo  `json:"meta"`
}

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`    // Machine-readable reason, e.g. "invalid_credentials"; empty for internal errors
	Message string `json:"message"`           // User-friendly error message
	Details any    `json:"details,omitempty"` // Remediation data, only for 4xx errors
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID string `json:"request_id"` // Request tracking ID
}

// MessageData is the payload of endpoints that only acknowledge an action.
type MessageData struct {
	Message string `json:"message"`
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{RequestID: deliverycontext.GetRequestID(c)}
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{
		Data: data,
		Meta: meta(c),
	})
}

// Message acknowledges an action with a human readable message.
func Message(c echo.Context, message string) error {
	return Success(c, http.StatusOK, MessageData{Message: message})
}

// Error returns an error response. Details never leave the server for 5xx errors.
func Error(c echo.Context, statusCode int, errorCode string, message string, details any) error {
	if statusCode >= http.StatusInternalServerError {
		details = nil
	}

	return c.JSON(statusCode, ErrorResponse{
		Error: &ErrorInfo{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
		Meta: meta(c),
	})
}

// InternalServerError returns a 500 error without a reason code.
func InternalServerError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "", "Operation failed", nil)
}
