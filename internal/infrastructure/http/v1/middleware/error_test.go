package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
)

func serve(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.GET("/x", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func TestErrorHandler_AppError(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("Rice 5kg", 3, 2))
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	assert.Equal(t, "Insufficient stock for Rice 5kg. Available: 2, Required: 3.", body["message"])
}

func TestErrorHandler_HidesInternalCause(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		_ = c.Error(errors.New("pq: password authentication failed"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.Equal(t, map[string]any{"request_id": "req-1"}, body["details"])
}

func TestRecovery_WritesEnvelope(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		panic("boom")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "boom")
}
