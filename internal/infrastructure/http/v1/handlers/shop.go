package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/shop"
	"shopledger/internal/infrastructure/http/v1/dto"
	"shopledger/internal/infrastructure/http/v1/middleware"
)

// ShopHandler handles shop creation and listing for the owner.
type ShopHandler struct {
	*BaseHandler
	service *shop.Service
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(base *BaseHandler, service *shop.Service) *ShopHandler {
	return &ShopHandler{BaseHandler: base, service: service}
}

// Create handles POST /shops
func (h *ShopHandler) Create(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	var req dto.CreateShopRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sh := req.ToEntity(userID)
	if err := h.service.Create(c.Request.Context(), sh); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, "Shop created successfully", sh)
}

// List handles GET /shops
func (h *ShopHandler) List(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	shops, err := h.service.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if shops == nil {
		shops = []*shop.Shop{}
	}
	h.OK(c, shops)
}

// Get handles GET /shops/:shopId. Ownership is checked by middleware.ShopAccess.
func (h *ShopHandler) Get(c *gin.Context) {
	h.OK(c, middleware.CurrentShop(c))
}
