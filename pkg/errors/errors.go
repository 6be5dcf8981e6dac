package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeCycle         ErrorType = "CYCLE"
	ErrorTypeMergeLimit    ErrorType = "MERGE_LIMIT"
	ErrorTypeSelfReference ErrorType = "SELF_REFERENCE"
	ErrorTypeEmptySource   ErrorType = "EMPTY_SOURCE"

	// Application errors
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal     ErrorType = "INTERNAL"
	ErrorTypeRateLimit    ErrorType = "RATE_LIMIT"
	ErrorTypeUnavailable  ErrorType = "UNAVAILABLE"

	// Infrastructure errors
	ErrorTypePersistence ErrorType = "PERSISTENCE"
	ErrorTypeExternal    ErrorType = "EXTERNAL"
)

// CodeUseHierarchicalMerge is attached to merge-limit errors so clients
// can suggest merging merge nodes instead of widening one
const CodeUseHierarchicalMerge = "use_hierarchical_merge"

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error. An optional id is folded
// into the message.
func NewNotFoundError(resource string, id ...string) *AppError {
	msg := resource
	if len(id) > 0 {
		msg = resource + " " + strings.Join(id, " ")
	}
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", msg),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewCycleError reports a parent attachment that would make a card its
// own ancestor
func NewCycleError(cardID, parentID string) *AppError {
	return &AppError{
		Type:       ErrorTypeCycle,
		Message:    fmt.Sprintf("attaching %s as a parent of %s would create a cycle", parentID, cardID),
		HTTPStatus: http.StatusConflict,
		Details: map[string]interface{}{
			"cardId":   cardID,
			"parentId": parentID,
		},
	}
}

// NewMergeLimitError reports an attempt to give a card more parents
// than the configured ceiling
func NewMergeLimitError(cardID string, limit int) *AppError {
	return &AppError{
		Type:       ErrorTypeMergeLimit,
		Message:    fmt.Sprintf("card %s cannot have more than %d parents", cardID, limit),
		Code:       CodeUseHierarchicalMerge,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]interface{}{
			"cardId": cardID,
			"limit":  limit,
		},
	}
}

// NewSelfReferenceError reports a card naming itself as a parent
func NewSelfReferenceError(cardID string) *AppError {
	return &AppError{
		Type:       ErrorTypeSelfReference,
		Message:    fmt.Sprintf("card %s cannot be its own parent", cardID),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewEmptySourceError reports a branch point outside the source card's
// transcript
func NewEmptySourceError(cardID string, messageIndex, messageCount int) *AppError {
	return &AppError{
		Type: ErrorTypeEmptySource,
		Message: fmt.Sprintf("card %s has no message at index %d (%d messages)",
			cardID, messageIndex, messageCount),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]interface{}{
			"cardId":       cardID,
			"messageIndex": messageIndex,
			"messageCount": messageCount,
		},
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(limit int, window string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    fmt.Sprintf("rate limit exceeded: %d requests per %s", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(service string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    fmt.Sprintf("service '%s' is unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// Wrap wraps an error with an AppError of the given type
func Wrap(err error, errType ErrorType, message string) *AppError {
	status := http.StatusInternalServerError
	switch errType {
	case ErrorTypeExternal:
		status = http.StatusBadGateway
	case ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	case ErrorTypeValidation:
		status = http.StatusBadRequest
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Cause:      err,
		HTTPStatus: status,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *AppError {
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsCycle checks if an error reports a rejected cycle
func IsCycle(err error) bool {
	return IsType(err, ErrorTypeCycle)
}

// IsMergeLimit checks if an error reports the parent ceiling
func IsMergeLimit(err error) bool {
	return IsType(err, ErrorTypeMergeLimit)
}

// IsSelfReference checks if an error reports a self-parent attempt
func IsSelfReference(err error) bool {
	return IsType(err, ErrorTypeSelfReference)
}

// IsEmptySource checks if an error reports an out-of-range branch point
func IsEmptySource(err error) bool {
	return IsType(err, ErrorTypeEmptySource)
}

// IsUnauthorized checks if an error is an unauthorized error
func IsUnauthorized(err error) bool {
	return IsType(err, ErrorTypeUnauthorized)
}
