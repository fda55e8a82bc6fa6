package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/core/id"
	"shopledger/internal/domain"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// CatalogHandler provides generic HTTP handlers for shop-scoped catalog entities.
// Req is the request body shared by create and update.
type CatalogHandler[T domain.CatalogEntity, Req any] struct {
	*BaseHandler
	service    *domain.CatalogService[T]
	entityName string

	newEntity   func(req *Req, shopID id.ID) T
	applyUpdate func(req *Req, existing T)
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T domain.CatalogEntity, Req any] struct {
	Service *domain.CatalogService[T]
	// EntityName is the display name used in messages, e.g. "Product".
	EntityName  string
	NewEntity   func(req *Req, shopID id.ID) T
	ApplyUpdate func(req *Req, existing T)
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T domain.CatalogEntity, Req any](base *BaseHandler, cfg CatalogHandlerConfig[T, Req]) *CatalogHandler[T, Req] {
	return &CatalogHandler[T, Req]{
		BaseHandler: base,
		service:     cfg.Service,
		entityName:  cfg.EntityName,
		newEntity:   cfg.NewEntity,
		applyUpdate: cfg.ApplyUpdate,
	}
}

// List handles GET /{entity} with search, sort and paging.
func (h *CatalogHandler[T, Req]) List(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), q.ToFilter(shopID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /{entity}/:id.
func (h *CatalogHandler[T, Req]) Get(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), shopID, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Create handles POST /{entity}.
func (h *CatalogHandler[T, Req]) Create(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}

	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	entity := h.newEntity(&req, shopID)
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.entityName+" created successfully", entity)
}

// Update handles PUT /{entity}/:id.
func (h *CatalogHandler[T, Req]) Update(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	existing, err := h.service.GetByID(ctx, shopID, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.applyUpdate(&req, existing)
	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, h.entityName+" updated successfully", existing)
}

// Delete handles DELETE /{entity}/:id.
func (h *CatalogHandler[T, Req]) Delete(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), shopID, entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, h.entityName+" deleted successfully", nil)
}
