// internal/interfaces/http/middleware/visitor.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/brewflow-storefront/internal/config"
)

const (
	VisitorIDKey     = "visitor_id"
	VisitorCookie    = "brewflow_visitor"
	visitorCookieLen = 36
)

// Visitor identifies the browser behind a request with a long-lived cookie.
// Each visitor gets its own slice of persistence, the way each browser has
// its own local storage.
func Visitor(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(VisitorCookie)
		if err != nil || !validVisitorID(id) {
			id = uuid.NewString()
		}

		// refresh the cookie on every visit so it only expires after inactivity.
		// Lax keeps it off cross-site POSTs, which would otherwise mutate the cart.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(VisitorCookie, id, cfg.Server.CookieMaxAge, "/", "", cfg.Server.CookieSecure, true)
		c.Set(VisitorIDKey, id)
		c.Next()
	}
}

// GetVisitorID returns the visitor id set by Visitor
func GetVisitorID(c *gin.Context) string {
	return c.GetString(VisitorIDKey)
}

func validVisitorID(id string) bool {
	if len(id) != visitorCookieLen {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
