// Package apperror provides structured error handling for the ledger API.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by the HTTP status they map to.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation                 = "VALIDATION_ERROR"
	CodeInvalidInput               = "INVALID_INPUT"
	CodeInsufficientStock          = "INSUFFICIENT_STOCK"
	CodeInsufficientStockToReverse = "INSUFFICIENT_STOCK_TO_REVERSE"
	CodeDocumentCancelled          = "DOCUMENT_CANCELLED"
	CodeDocumentPaid               = "DOCUMENT_ALREADY_PAID"
	CodeCashDocument               = "CASH_DOCUMENT"
	CodeCashNotSettled             = "CASH_DOCUMENT_NOT_SETTLED"
	CodePaymentExceedsDue          = "PAYMENT_EXCEEDS_DUE"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict           = "CONFLICT"
	CodeDuplicate          = "DUPLICATE_ENTRY"
	CodeProtectedCategory  = "PROTECTED_CATEGORY"
	CodeReferencedEntity   = "ENTITY_IN_USE"
	CodeConcurrentModified = "CONCURRENT_MODIFICATION"
	CodeIdempotencyBusy    = "IDEMPOTENCY_IN_PROGRESS"

	// Unprocessable (422)
	CodeIdempotencyMismatch = "IDEMPOTENCY_KEY_REUSED"
)

// AppError is the standard error type of the service.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewBusinessRule creates a rejected-operation error with a specific code (400)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInsufficientStock reports a sale line that exceeds available stock.
func NewInsufficientStock(productName string, required, available int64) *AppError {
	return &AppError{
		Code: CodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s. Available: %d, Required: %d.",
			productName, available, required),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"product":   productName,
			"required":  required,
			"available": available,
		},
	}
}

// NewInsufficientStockToReverse reports a purchase that cannot be cancelled
// because part of its stock was already sold.
func NewInsufficientStockToReverse(productName string, required, available int64) *AppError {
	return &AppError{
		Code: CodeInsufficientStockToReverse,
		Message: fmt.Sprintf("Cannot cancel purchase. Not enough stock for %s to return. Current stock: %d, return required: %d.",
			productName, available, required),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"product":   productName,
			"required":  required,
			"available": available,
		},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s is already registered in this shop", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewInUse creates an error for deleting an entity that is still referenced (409)
func NewInUse(entity string, id any, references int64) *AppError {
	return &AppError{
		Code:       CodeReferencedEntity,
		Message:    fmt.Sprintf("%s has %d linked records and cannot be deleted", entity, references),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id, "references": references},
	}
}

// NewProtectedCategory rejects manual creation of orchestrator-only categories (409)
func NewProtectedCategory(category string) *AppError {
	return &AppError{
		Code:       CodeProtectedCategory,
		Message:    fmt.Sprintf("Category '%s' cannot be created manually. It is handled by sale/purchase endpoints.", category),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"category": category},
	}
}

// NewConcurrentModification creates an optimistic locking error (409)
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModified,
		Message:    "Record was modified by another request. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewIdempotencyConflict reports a key whose first request is still running (409)
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotencyBusy,
		Message:    "A request with this idempotency key is still being processed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"key": key},
	}
}

// NewIdempotencyMismatch reports a key reused for a different request (422)
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotencyMismatch,
		Message:    "Idempotency key was already used for a different request",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"key": key},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries the given AppError code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsConflict reports any 409 error.
func IsConflict(err error) bool {
	return GetHTTPStatus(err) == http.StatusConflict
}
