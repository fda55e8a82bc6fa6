package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientStock_Message(t *testing.T) {
	err := NewInsufficientStock("Rice 5kg", 3, 2)

	assert.Equal(t, "Insufficient stock for Rice 5kg. Available: 2, Required: 3.", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, int64(2), err.Details["available"])
}

func TestAsAppError_ThroughWrapping(t *testing.T) {
	base := NewNotFound("customer", "42")
	wrapped := fmt.Errorf("load counterparty: %w", base)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, base, appErr)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.False(t, IsAppError(errors.New("boom")))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(NewInUse("customer", "1", 2)))
	assert.True(t, IsConflict(NewProtectedCategory("SALE_RETURN")))
	assert.True(t, IsConflict(NewDuplicate("customer", "phone", "98000")))
	assert.False(t, IsConflict(NewValidation("bad")))
}

func TestWithCause_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
