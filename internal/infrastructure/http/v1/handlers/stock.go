package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/registers/stock"
)

// StockHandler serves the stock movement history of products.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// History handles GET /products/:id/movements
func (h *StockHandler) History(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	movements, err := h.service.History(c.Request.Context(), shopID, productID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	if movements == nil {
		movements = []stock.Movement{}
	}
	h.OK(c, movements)
}
