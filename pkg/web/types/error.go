package types

import "net/http"

// ErrorResponse is the body of every JSON error except the 429 rejection,
// which has its own fixed shape (see RateLimitResponse).
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error and selects the HTTP status.
	Type string `json:"type"`

	// Param is the name of the parameter that caused the error (if applicable).
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error type constants.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeAuthentication indicates failed credentials (401).
	ErrorTypeAuthentication = "authentication_error"

	// ErrorTypePermissionDenied indicates the session lacks the required role (403).
	ErrorTypePermissionDenied = "permission_denied"

	// ErrorTypeNotFound indicates a resource was not found (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeConflict indicates the resource already exists (409).
	ErrorTypeConflict = "conflict"

	// ErrorTypeRateLimitExceeded indicates too many requests (429).
	ErrorTypeRateLimitExceeded = "rate_limit_exceeded"

	// ErrorTypeServerError indicates an internal server error (500).
	ErrorTypeServerError = "server_error"

	// ErrorTypeServiceUnavailable indicates temporary unavailability (503).
	ErrorTypeServiceUnavailable = "service_unavailable"
)

// Error code constants for common error scenarios.
const (
	CodeMissingField   = "missing_field"
	CodeInvalidValue   = "invalid_value"
	CodeUserExists     = "user_exists"
	CodeUserNotFound   = "user_not_found"
	CodeBadCredentials = "bad_credentials"
	CodeAdminOnly      = "admin_only"
	CodeInternalError  = "internal_error"
)

// NewErrorResponse creates a new error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewAuthenticationError creates an error response for failed logins (401).
func NewAuthenticationError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeAuthentication, "", CodeBadCredentials)
}

// NewPermissionDeniedError creates an error response for admin-only resources (403).
func NewPermissionDeniedError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypePermissionDenied, "", CodeAdminOnly)
}

// NewNotFoundError creates an error response for unknown resources (404).
func NewNotFoundError(message, param string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeNotFound, param, CodeUserNotFound)
}

// NewConflictError creates an error response for duplicate resources (409).
func NewConflictError(message, param string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeConflict, param, CodeUserExists)
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// HTTPStatusCode returns the HTTP status code for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypePermissionDenied:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrorTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// TooManyRequests is the error string of every rejected request.
const TooManyRequests = "Too Many Requests"

// RateLimitResponse is the body of a 429 response.
type RateLimitResponse struct {
	Error      string `json:"error"`
	RetryAfter int64  `json:"retry_after"`
}

// NewRateLimitResponse creates the rejection body for retryAfter seconds.
func NewRateLimitResponse(retryAfter int64) *RateLimitResponse {
	return &RateLimitResponse{Error: TooManyRequests, RetryAfter: retryAfter}
}
