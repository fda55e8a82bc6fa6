// Package handlers provides HTTP request handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/infrastructure/http/v1/dto"
	"shopledger/internal/infrastructure/http/v1/middleware"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, bindError("invalid request body", err))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, bindError("invalid query parameters", err))
		return false
	}
	return true
}

func bindError(message string, err error) *apperror.AppError {
	appErr := apperror.NewValidation(message)
	if fields, ok := dto.FieldErrors(err); ok {
		return appErr.WithDetail("fields", fields)
	}
	return appErr.WithDetail("error", err.Error())
}

// Error registers err on the gin context and aborts the request.
// The JSON body is written by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// UserID returns the authenticated user's id.
func (h *BaseHandler) UserID(c *gin.Context) (id.ID, bool) {
	userID, err := id.Parse(appctx.GetUserID(c.Request.Context()))
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return id.Nil(), false
	}
	return userID, true
}

// ShopID returns the shop resolved by middleware.ShopAccess.
func (h *BaseHandler) ShopID(c *gin.Context) (id.ID, bool) {
	sh := middleware.CurrentShop(c)
	if sh == nil {
		h.Error(c, apperror.NewInternal(errors.New("shop access middleware not installed")))
		return id.Nil(), false
	}
	return sh.ID, true
}

// Scope returns the shop and user of a shop-scoped request.
func (h *BaseHandler) Scope(c *gin.Context) (shopID, userID id.ID, ok bool) {
	if shopID, ok = h.ShopID(c); !ok {
		return
	}
	userID, ok = h.UserID(c)
	return
}

// ParamID parses a UUID path parameter.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	v, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail(name, c.Param(name)))
		return id.Nil(), false
	}
	return v, true
}

// Created sends a 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, message string, data any) {
	h.respond(c, http.StatusCreated, dto.Response{Success: true, Message: message, Data: data})
}

// OK sends a 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.respond(c, http.StatusOK, dto.Response{Success: true, Data: data})
}

// Success sends a 200 response with a message and optional data.
func (h *BaseHandler) Success(c *gin.Context, message string, data any) {
	h.respond(c, http.StatusOK, dto.Response{Success: true, Message: message, Data: data})
}

// respond writes the body and stores it for idempotent replay.
func (h *BaseHandler) respond(c *gin.Context, status int, body dto.Response) {
	middleware.CompleteIdempotency(c, status, body)
	c.JSON(status, body)
}
