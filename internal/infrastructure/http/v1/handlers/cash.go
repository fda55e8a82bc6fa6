package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/cash"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// CashHandler serves lump payments that settle the oldest open documents first.
type CashHandler struct {
	*BaseHandler
	allocator *cash.Allocator
}

// NewCashHandler creates a new cash handler.
func NewCashHandler(base *BaseHandler, allocator *cash.Allocator) *CashHandler {
	return &CashHandler{BaseHandler: base, allocator: allocator}
}

// In handles POST /cash/in (money received from a customer).
func (h *CashHandler) In(c *gin.Context) {
	h.allocate(c, "customerId", "Payment received successfully", h.allocator.CashIn)
}

// Out handles POST /cash/out (money paid to a supplier).
func (h *CashHandler) Out(c *gin.Context) {
	h.allocate(c, "supplierId", "Payment made successfully", h.allocator.CashOut)
}

func (h *CashHandler) allocate(
	c *gin.Context,
	field, message string,
	run func(ctx context.Context, cmd cash.Command) (*cash.Result, error),
) {
	shopID, userID, ok := h.Scope(c)
	if !ok {
		return
	}

	var req dto.CashRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cmd, err := req.ToCommand(field, shopID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := run(c.Request.Context(), cmd)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, message, res)
}

// RegisterRoutes registers the cash routes.
func (h *CashHandler) RegisterRoutes(rg *gin.RouterGroup, idempotent gin.HandlerFunc) {
	rg.POST("/in", idempotent, h.In)
	rg.POST("/out", idempotent, h.Out)
}
