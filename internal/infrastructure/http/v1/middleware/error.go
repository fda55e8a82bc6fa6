package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/pkg/logger"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		writeError(c)
	}
}

func writeError(c *gin.Context) {
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	status, body := errorBody(c, c.Errors.Last().Err)

	// The failure is stored too, so a retry with the same key gets the same answer.
	if key, store, ok := idempotencyFrom(c); ok {
		if err := store.FailKey(c.Request.Context(), key, status, body); err != nil {
			logger.Warn(c.Request.Context(), "failed to store idempotent error response", "key", key, "error", err)
		}
	}

	c.JSON(status, body)
}

func errorBody(c *gin.Context, err error) (int, ErrorBody) {
	ctx := c.Request.Context()

	appErr, ok := apperror.AsAppError(err)
	if !ok {
		logger.Error(ctx, "unhandled error", "error", err)
		return http.StatusInternalServerError, internalBody(c)
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed",
			"code", appErr.Code,
			"cause", appErr.Err,
		)
		return appErr.HTTPStatus, internalBody(c)
	}

	if appErr.Err != nil {
		logger.Warn(ctx, "request error", "code", appErr.Code, "cause", appErr.Err)
	}

	return appErr.HTTPStatus, ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
}

func internalBody(c *gin.Context) ErrorBody {
	return ErrorBody{
		Code:    apperror.CodeInternal,
		Message: "Internal server error",
		Details: map[string]any{
			"request_id": c.GetString(KeyRequestID),
		},
	}
}
