package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/reports"
)

// DashboardHandler serves the shop dashboard.
type DashboardHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *BaseHandler, service *reports.Service) *DashboardHandler {
	return &DashboardHandler{BaseHandler: base, service: service}
}

// Summary handles GET /dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}

	d, err := h.service.GetDashboard(c.Request.Context(), shopID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// Chart handles GET /dashboard/chart
func (h *DashboardHandler) Chart(c *gin.Context) {
	shopID, ok := h.ShopID(c)
	if !ok {
		return
	}

	points, err := h.service.GetChart(c.Request.Context(), shopID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, points)
}
