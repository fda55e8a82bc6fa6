package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/documents"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// DocumentHandler serves sales or purchases; one instance per flow.
type DocumentHandler struct {
	*BaseHandler
	service *documents.Service
	flow    documents.Flow
}

// NewDocumentHandler creates a handler for the service's flow.
func NewDocumentHandler(base *BaseHandler, service *documents.Service) *DocumentHandler {
	return &DocumentHandler{BaseHandler: base, service: service, flow: service.Flow()}
}

// Create handles POST /sales and POST /purchases
func (h *DocumentHandler) Create(c *gin.Context) {
	shopID, userID, ok := h.Scope(c)
	if !ok {
		return
	}

	var req dto.DocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cmd, err := req.ToCommand(h.flow.Kind, shopID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Create(c.Request.Context(), cmd)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.flow.Title+" created successfully", doc)
}

// List handles GET /sales
func (h *DocumentHandler) List(c *gin.Context) {
	shopID, userID, ok := h.Scope(c)
	if !ok {
		return
	}

	var q dto.DocumentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter(h.flow.Kind, shopID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if items == nil {
		items = []*documents.Document{}
	}
	h.OK(c, dto.ListResponse[*documents.Document]{
		Items:      items,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Get handles GET /sales/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	shopID, userID, ok := h.Scope(c)
	if !ok {
		return
	}
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Get(c.Request.Context(), shopID, userID, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// RecordPayment handles POST /sales/:id/payments
func (h *DocumentHandler) RecordPayment(c *gin.Context) {
	shopID, userID, ok := h.Scope(c)
	if !ok {
		return
	}
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.RecordPayment(c.Request.Context(), req.ToCommand(shopID, userID, docID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Payment recorded successfully", doc)
}

// Cancel handles POST /sales/:id/cancel
func (h *DocumentHandler) Cancel(c *gin.Context) {
	shopID, userID, ok := h.Scope(c)
	if !ok {
		return
	}
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Cancel(c.Request.Context(), documents.CancelCommand{
		ShopID:     shopID,
		UserID:     userID,
		DocumentID: docID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, h.flow.Title+" cancelled successfully", doc)
}

// RegisterRoutes registers the document routes. Mutating routes run behind idempotent.
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup, idempotent gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", idempotent, h.Create)
	rg.POST("/:id/payments", idempotent, h.RecordPayment)
	rg.POST("/:id/cancel", idempotent, h.Cancel)
}
