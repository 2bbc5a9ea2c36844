// internal/interfaces/http/handlers/customer.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
)

// CustomerHandler manages the visitor's customer identity
type CustomerHandler struct {
	deps *Dependencies
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(deps *Dependencies) *CustomerHandler {
	return &CustomerHandler{deps: deps}
}

// ContinueRequest is the body of POST /customer
type ContinueRequest struct {
	CustomerID string `json:"customerId"`
}

// GetCustomer handles GET /customer, creating an identity on first visit
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	v := h.deps.visitor(c)

	unlock := v.lock()
	defer unlock()

	_, existed, err := v.session.Get(c.Request.Context())
	if err != nil {
		fail(c, v, "Error", err)
		return
	}
	id, err := v.session.Ensure(c.Request.Context())
	if err != nil {
		fail(c, v, "Error", err)
		return
	}

	if !existed {
		v.notices.Notify(c.Request.Context(), notify.Success(
			"Welcome to BrewFlow!",
			"Your Customer ID is "+id+". Keep it safe to track your orders ☕",
		))
	}
	respond(c, http.StatusOK, v, "Customer identity", gin.H{"customerId": id})
}

// ContinueAsCustomer handles POST /customer with an ID the customer typed in
func (h *CustomerHandler) ContinueAsCustomer(c *gin.Context) {
	v := h.deps.visitor(c)

	var req ContinueRequest
	if !bindJSON(c, v, "session.Adopt", "Customer ID required", &req) {
		return
	}

	id, err := v.session.Adopt(c.Request.Context(), req.CustomerID)
	if err != nil {
		fail(c, v, "Customer ID required", err)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Welcome to BrewFlow!", "Your coffee journey begins now ☕"))
	respond(c, http.StatusOK, v, "Customer identity", gin.H{"customerId": id})
}

// SignOut handles DELETE /customer
func (h *CustomerHandler) SignOut(c *gin.Context) {
	v := h.deps.visitor(c)

	if err := v.session.Clear(c.Request.Context()); err != nil {
		fail(c, v, "Error", err)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Signed out successfully", "Come back for more coffee soon! ☕"))
	respond(c, http.StatusOK, v, "Signed out", nil)
}
