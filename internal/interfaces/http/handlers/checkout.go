// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/domain/checkout"
)

// CheckoutHandler hands the visitor's cart to the payment provider
type CheckoutHandler struct {
	deps *Dependencies
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(deps *Dependencies) *CheckoutHandler {
	return &CheckoutHandler{deps: deps}
}

// Checkout handles POST /checkout. Browsers get a 303 to the hosted payment
// page; clients asking for JSON get the URL in the envelope instead.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	v := h.deps.visitor(c)
	ctx := c.Request.Context()

	unlock := v.lock()
	defer unlock()

	engine, err := v.cart(c)
	if err != nil {
		fail(c, v, "Failed to load cart", err)
		return
	}

	customerID, err := v.session.Ensure(ctx)
	if err != nil {
		fail(c, v, "Error", err)
		return
	}

	var target string
	nav := checkout.NavigatorFunc(func(_ context.Context, url string) error {
		target = url
		return nil
	})

	session, err := h.deps.Checkout.Checkout(ctx, engine, customerID, nav, v.notices)
	if err != nil {
		respondError(c, v, err)
		return
	}

	if wantsJSON(c) {
		respond(c, http.StatusOK, v, "Checkout session created", session)
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
