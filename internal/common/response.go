package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "requestID"

// APIResponse is the standardized JSON response envelope.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError contains error details in the response.
type APIError struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Success sends a successful JSON response with data.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
	})
}

// Error sends an error JSON response.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      statusCode,
			Message:   message,
			RequestID: c.GetString(RequestIDKey),
		},
	})
}

// HandleError inspects a domain error and sends the appropriate HTTP response.
// OTP failures collapse into one message so clients cannot tell challenge states apart.
func HandleError(c *gin.Context, err error) {
	var notFound *NotFoundError
	var validation *ValidationError
	var unauthorized *UnauthorizedError
	var provider *ProviderError

	switch {
	case IsOTPError(err):
		Error(c, http.StatusUnauthorized, OTPFailureMessage)
	case errors.Is(err, ErrRateLimited):
		Error(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrUnknownTemplate), errors.Is(err, ErrMissingVariable):
		Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrUnresolvableRecipient):
		Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrUnknownChannel):
		Error(c, http.StatusNotFound, err.Error())
	case IsConfigurationError(err):
		Error(c, http.StatusConflict, err.Error())
	case errors.As(err, &notFound):
		Error(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &validation):
		Error(c, http.StatusBadRequest, validation.Error())
	case errors.As(err, &unauthorized):
		Error(c, http.StatusUnauthorized, unauthorized.Error())
	case errors.As(err, &provider):
		Error(c, http.StatusBadGateway, "sms delivery failed")
	default:
		Error(c, http.StatusInternalServerError, "internal server error")
	}
}
