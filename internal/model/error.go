package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInvalidState   = "INVALID_STATE"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeUnauthorised   = "UNAUTHORIZED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// DomainError distinguishes business-rule violations from infrastructure
// failures so handlers can map them to 4xx rather than 5xx responses.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NotFound creates a NOT_FOUND domain error.
func NotFound(message string) *DomainError {
	return NewDomainError(ErrCodeNotFound, message)
}

// InvalidRequest creates an INVALID_REQUEST domain error.
func InvalidRequest(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidRequest, message)
}

// InvalidState creates an INVALID_STATE domain error.
func InvalidState(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidState, message)
}

// Conflict creates a CONFLICT domain error.
func Conflict(message string) *DomainError {
	return NewDomainError(ErrCodeConflict, message)
}

// Common domain errors
var (
	ErrProductNotFound    = NotFound("Product not found")
	ErrProductUnavailable = InvalidState("Product is currently unavailable")
	ErrVariantNotFound    = InvalidState("Variant does not exist")
	ErrCartItemNotFound   = NotFound("Cart item not found")
	ErrOrderNotFound      = NotFound("Order not found")
	ErrUserNotFound       = NotFound("User not found")
	ErrNothingToUpdate    = InvalidRequest("Nothing to update")
	ErrEmptyOrder         = InvalidRequest("Order must have at least one item")
)
