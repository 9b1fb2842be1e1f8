package dto

// APIError is the error envelope every failing response uses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeValidation    = "validation_error"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeProcessing    = "processing_error"
	ErrCodeResolution    = "resolution_error"
	ErrCodeInternalError = "internal_error"
)

// NewAPIError creates an APIError with the given code and message
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// ValidationError creates a validation error response
func ValidationError(message string) APIError {
	return NewAPIError(ErrCodeValidation, message)
}

// UnauthorizedError creates an unauthorized error response
func UnauthorizedError(message string) APIError {
	return NewAPIError(ErrCodeUnauthorized, message)
}

// NotFoundError creates a not found error response
func NotFoundError(resource string) APIError {
	return NewAPIError(ErrCodeNotFound, resource+" not found")
}

// ConflictError creates a conflict error response
func ConflictError(message string) APIError {
	return NewAPIError(ErrCodeConflict, message)
}

// InternalError creates an internal server error response
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}
