package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders adds security headers to responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// XSS Protection
		c.Header("X-XSS-Protection", "1; mode=block")

		// Referrer Policy
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Product images are inline data URLs
		c.Header("Content-Security-Policy", "default-src 'self'; img-src 'self' data: https:")

		// Visitor state must never be shared through caches
		c.Header("Cache-Control", "no-store")

		c.Header("Server", "BrewFlow Storefront")

		c.Next()
	}
}
