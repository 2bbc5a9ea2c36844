// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/config"
)

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// Listed origins and "*.domain" patterns get credentialed access. A bare "*"
// opens the API to any origin without cookies, so visitor state never leaks
// to a page the operator did not name.
func CORS(cfg *config.Config) gin.HandlerFunc {
	methods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	headers := strings.Join(cfg.Security.CORSAllowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		c.Header("Vary", "Origin")

		if origin != "" {
			switch {
			case isOriginAllowed(origin, cfg.Security.CORSAllowedOrigins):
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
			case allowsAnyOrigin(cfg.Security.CORSAllowedOrigins):
				c.Header("Access-Control-Allow-Origin", "*")
			}
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", "86400") // 24 hours
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isOriginAllowed reports whether origin is named exactly or sits under a
// "*.domain" pattern. The wildcard matches subdomains only, never the bare
// domain or a host that merely ends with the same letters.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())

	for _, allowed := range allowedOrigins {
		if allowed == origin {
			return true
		}
		if domain, ok := strings.CutPrefix(allowed, "*."); ok && domain != "" {
			if strings.HasSuffix(host, "."+strings.ToLower(domain)) {
				return true
			}
		}
	}
	return false
}

func allowsAnyOrigin(allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			return true
		}
	}
	return false
}
