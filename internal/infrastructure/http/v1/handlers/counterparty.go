package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// CounterpartyHandler serves the customer or the supplier catalog.
// One instance per kind; a record of the other kind is reported as not found.
type CounterpartyHandler struct {
	*BaseHandler
	service *counterparty.Service
	kind    counterparty.Kind
}

// NewCounterpartyHandler creates a handler for one counterparty kind.
func NewCounterpartyHandler(base *BaseHandler, service *counterparty.Service, kind counterparty.Kind) *CounterpartyHandler {
	return &CounterpartyHandler{BaseHandler: base, service: service, kind: kind}
}

// List handles GET /customers and GET /suppliers
func (h *CounterpartyHandler) List(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.ListByKind(c.Request.Context(), counterparty.ListFilter{
		ListFilter: q.ToFilter(shopID),
		Kind:       h.kind,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /customers/:id
func (h *CounterpartyHandler) Get(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}
	partyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	party, err := h.service.Get(c.Request.Context(), shopID, h.kind, partyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, party)
}

// Create handles POST /customers
func (h *CounterpartyHandler) Create(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var req dto.CounterpartyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	party := req.ToEntity(shopID, h.kind)
	if err := h.service.Create(c.Request.Context(), party); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.kind.Title()+" created successfully", party)
}

// Update handles PUT /customers/:id
func (h *CounterpartyHandler) Update(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}
	partyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.CounterpartyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	party, err := h.service.Get(ctx, shopID, h.kind, partyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(party)
	if err := h.service.Update(ctx, party); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, h.kind.Title()+" updated successfully", party)
}

// Delete handles DELETE /customers/:id
func (h *CounterpartyHandler) Delete(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}
	partyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteOfKind(c.Request.Context(), shopID, h.kind, partyID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, h.kind.Title()+" deleted successfully", nil)
}
