// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/domain/order"
	"github.com/your-org/brewflow-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
)

// OrderHandler serves the customer's orders and the admin order board
type OrderHandler struct {
	deps *Dependencies
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(deps *Dependencies) *OrderHandler {
	return &OrderHandler{deps: deps}
}

// GetMyOrders handles GET /orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	v := h.deps.visitor(c)

	customerID, ok, err := v.session.Get(c.Request.Context())
	if err != nil {
		fail(c, v, "Error fetching orders", err)
		return
	}
	if !ok {
		fail(c, v, "Error fetching orders", apperr.Validation("order.ListForCustomer", "Customer ID required"))
		return
	}

	orders, err := h.deps.Orders.ListForCustomer(c.Request.Context(), customerID)
	if err != nil {
		fail(c, v, "Error fetching orders", err)
		return
	}

	respond(c, http.StatusOK, v, "Orders retrieved successfully", gin.H{
		"customerId": customerID,
		"orders":     orders,
	})
}

// DownloadReceipt handles GET /orders/:id/receipt
func (h *OrderHandler) DownloadReceipt(c *gin.Context) {
	v := h.deps.visitor(c)

	customerID, ok, err := v.session.Get(c.Request.Context())
	if err != nil {
		fail(c, v, "Receipt unavailable", err)
		return
	}
	if !ok {
		fail(c, v, "Receipt unavailable", apperr.Validation("order.Receipt", "Customer ID required"))
		return
	}

	o, err := h.deps.Orders.FindForCustomer(c.Request.Context(), customerID, c.Param("id"))
	if err != nil {
		fail(c, v, "Receipt unavailable", err)
		return
	}

	pdf, err := h.deps.Receipts.GenerateReceipt(o)
	if err != nil {
		v.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to generate receipt")
		fail(c, v, "Receipt unavailable", apperr.Transport("order.Receipt", "Failed to generate receipt", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", o.ShortID()))
	c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
}

// AdminListOrders handles GET /admin/orders
func (h *OrderHandler) AdminListOrders(c *gin.Context) {
	v := h.deps.visitor(c)
	token := middleware.GetAdminToken(c)

	orders, err := h.deps.Orders.ListAll(c.Request.Context(), token)
	if err != nil {
		h.adminFail(c, v, "Failed to load orders", err)
		return
	}

	respond(c, http.StatusOK, v, "Orders retrieved successfully", gin.H{
		"orders":   order.ToBoard(orders),
		"statuses": order.Statuses,
	})
}

// AdvanceOrder handles POST /admin/orders/:id/advance
func (h *OrderHandler) AdvanceOrder(c *gin.Context) {
	v := h.deps.visitor(c)
	ctx := c.Request.Context()
	token := middleware.GetAdminToken(c)

	current, err := h.deps.Orders.Find(ctx, token, c.Param("id"))
	if err != nil {
		h.adminFail(c, v, "Update failed", err)
		return
	}

	updated, err := h.deps.Orders.Advance(ctx, token, *current)
	if err != nil {
		h.adminFail(c, v, "Update failed", err)
		return
	}

	title, desc := order.UpdateNotice(updated)
	v.notices.Notify(ctx, notify.Success(title, desc))
	respond(c, http.StatusOK, v, "Order status updated", order.ToBoard([]order.Order{*updated})[0])
}

// adminFail drops the stored token when the backend rejected it
func (h *OrderHandler) adminFail(c *gin.Context, v *visitor, title string, err error) {
	rejectIfUnauthorized(c, v, err)
	fail(c, v, title, err)
}

// rejectIfUnauthorized clears the admin token after an authorization failure
// so the next admin request asks for a login
func rejectIfUnauthorized(c *gin.Context, v *visitor, err error) {
	if !apperr.Is(err, apperr.KindAuthorization) {
		return
	}
	if rerr := v.auth.Reject(c.Request.Context()); rerr != nil {
		v.logger.WithError(rerr).Warn("Failed to clear admin token")
	}
}
