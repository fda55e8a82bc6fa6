package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/cashflow"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// TransactionHandler serves the cash-flow ledger.
type TransactionHandler struct {
	*BaseHandler
	service *cashflow.Service
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(base *BaseHandler, service *cashflow.Service) *TransactionHandler {
	return &TransactionHandler{BaseHandler: base, service: service}
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	shopID, userID, ok := h.Scope(c)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := req.ToEntry(shopID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.CreateManual(c.Request.Context(), entry)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, "Transaction recorded successfully", t)
}

// List handles GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var q dto.TransactionListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter(shopID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items, total, summary, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if items == nil {
		items = []*cashflow.Transaction{}
	}
	h.OK(c, dto.TransactionListResponse{
		Items:      items,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		Summary:    summary,
	})
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}
	txID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), shopID, txID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// RegisterRoutes registers the transaction routes.
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup, idempotent gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", idempotent, h.Create)
}
