// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/domain/cart"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	deps *Dependencies
}

// NewCartHandler creates a new cart handler
func NewCartHandler(deps *Dependencies) *CartHandler {
	return &CartHandler{deps: deps}
}

// AddToCartRequest is the body of POST /cart/items. Name and price are
// taken from the catalog, never from the client.
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	v := h.deps.visitor(c)

	engine, err := v.cart(c)
	if err != nil {
		fail(c, v, "Failed to load cart", err)
		return
	}

	respond(c, http.StatusOK, v, "Cart retrieved successfully", engine.Summary())
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	v := h.deps.visitor(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ProductID) == "" {
		fail(c, v, "Invalid request", apperr.Validation("cart.Add", "productId is required"))
		return
	}

	p, err := h.deps.Products.Find(c.Request.Context(), req.ProductID)
	if err != nil {
		fail(c, v, "Product unavailable", err)
		return
	}

	h.mutate(c, v, "Item added to cart", func(ctx context.Context, e *cart.Engine) error {
		return e.Add(ctx, p)
	})
}

// IncreaseItem handles POST /cart/items/:id/increase
func (h *CartHandler) IncreaseItem(c *gin.Context) {
	v := h.deps.visitor(c)
	id := c.Param("id")

	h.mutate(c, v, "Cart updated", func(ctx context.Context, e *cart.Engine) error {
		return e.Increase(ctx, id)
	})
}

// DecreaseItem handles POST /cart/items/:id/decrease
func (h *CartHandler) DecreaseItem(c *gin.Context) {
	v := h.deps.visitor(c)
	id := c.Param("id")

	h.mutate(c, v, "Cart updated", func(ctx context.Context, e *cart.Engine) error {
		return e.Decrease(ctx, id)
	})
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	v := h.deps.visitor(c)
	id := c.Param("id")

	h.mutate(c, v, "Cart updated", func(ctx context.Context, e *cart.Engine) error {
		return e.Remove(ctx, id)
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	v := h.deps.visitor(c)

	h.mutate(c, v, "Cart cleared", func(ctx context.Context, e *cart.Engine) error {
		return e.Clear(ctx)
	})
}

func (h *CartHandler) mutate(c *gin.Context, v *visitor, message string, op func(context.Context, *cart.Engine) error) {
	unlock := v.lock()
	defer unlock()

	engine, err := v.cart(c)
	if err != nil {
		fail(c, v, "Failed to load cart", err)
		return
	}

	if err := op(c.Request.Context(), engine); err != nil {
		fail(c, v, "Failed to save cart", err)
		return
	}

	respond(c, http.StatusOK, v, message, engine.Summary())
}
