// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"github.com/gin-gonic/gin"
)

const AdminTokenKey = "admin_token"

// TokenSource finds the admin token for the current visitor
type TokenSource interface {
	AdminToken(c *gin.Context) (string, error)
}

// AdminRequired rejects requests from visitors without a usable admin
// token. onError writes the rejection.
func AdminRequired(tokens TokenSource, onError func(c *gin.Context, err error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokens.AdminToken(c)
		if err != nil {
			onError(c, err)
			c.Abort()
			return
		}

		c.Set(AdminTokenKey, token)
		c.Next()
	}
}

// GetAdminToken returns the token stored by AdminRequired
func GetAdminToken(c *gin.Context) string {
	return c.GetString(AdminTokenKey)
}
