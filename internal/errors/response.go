package errors

import (
	"errors"
	"net/http"
)

// ErrorDetail is the machine-readable portion of an API error response.
type ErrorDetail struct {
	Message      string                 `json:"message"`
	InternalCode string                 `json:"internal_code,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the JSON body returned for any failed API request.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse builds the API response body for an error.
// The message is the hint when one exists; otherwise the raw error text.
func NewErrorResponse(err error) *ErrorResponse {
	detail := ErrorDetail{Message: err.Error()}

	var ie *InternalError
	if errors.As(err, &ie) {
		if ie.Hint() != "" {
			detail.Message = ie.Hint()
		}
		detail.Details = ie.ReportableDetails()
		if ie.mark != nil {
			detail.InternalCode = ie.mark.Error()
		}
	}

	return &ErrorResponse{Success: false, Error: detail}
}

// HTTPStatusFromErr maps a marked error to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidOperation):
		return http.StatusConflict
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrHTTPClient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
