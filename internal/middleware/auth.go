package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth validates the Authorization: Bearer <token> header against the
// configured API token
func BearerAuth(token string) gin.HandlerFunc {
	if token == "" {
		// Return a middleware that always returns 500 if misconfigured
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "server misconfigured: auth.token not set",
			})
		}
	}
	tokenBytes := []byte(token)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		// Use subtle.ConstantTimeCompare to prevent timing attacks
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(presented)), tokenBytes) != 1 {
			c.Header("WWW-Authenticate", `Bearer realm="pricelist"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
			})
			return
		}
		c.Next()
	}
}
