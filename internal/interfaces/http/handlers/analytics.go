// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/domain/analytics"
	"github.com/your-org/brewflow-storefront/internal/domain/cart"
	"github.com/your-org/brewflow-storefront/internal/interfaces/http/middleware"
)

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	deps             *Dependencies
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(deps *Dependencies) *AnalyticsHandler {
	return &AnalyticsHandler{
		deps:             deps,
		analyticsService: analytics.NewService(),
	}
}

// GetDashboard handles GET /admin/analytics/dashboard
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	v := h.deps.visitor(c)

	orders, err := h.deps.Orders.ListAll(c.Request.Context(), middleware.GetAdminToken(c))
	if err != nil {
		rejectIfUnauthorized(c, v, err)
		fail(c, v, "Failed to load dashboard", err)
		return
	}

	stats := h.analyticsService.GetDashboardStats(orders)

	respond(c, http.StatusOK, v, "Dashboard statistics retrieved successfully", gin.H{
		"total_revenue":      cart.FormatAmount(stats.TotalRevenue),
		"revenue_today":      cart.FormatAmount(stats.RevenueToday),
		"revenue_this_week":  cart.FormatAmount(stats.RevenueThisWeek),
		"revenue_this_month": cart.FormatAmount(stats.RevenueThisMonth),
		"avg_order_value":    cart.FormatAmount(stats.AvgOrderValue),
		"open_orders":        stats.OpenOrders,
		"raw":                stats,
	})
}
