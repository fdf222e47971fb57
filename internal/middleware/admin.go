package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/chapas/internal/auth"
	"github.com/playmatatu/chapas/internal/config"
)

// AdminTokenHeader carries the plain admin token.
const AdminTokenHeader = "X-Admin-Token"

// AdminGuard only lets requests through whose X-Admin-Token matches
// ADMIN_TOKEN_HASH. With no hash configured every admin route is closed.
func AdminGuard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminTokenHash == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access not configured"})
			return
		}
		if !auth.VerifyAdminToken(cfg.AdminTokenHash, c.GetHeader(AdminTokenHeader)) {
			log.Printf("[ADMIN] rejected %s %s from %s", c.Request.Method, c.FullPath(), c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}
