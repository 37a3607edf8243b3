package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/api/handler/response"
	"github.com/manarouei/agent-skills-sub004/pkg"
)

// AuthMiddleware requires a Bearer token. It is a no-op in dev mode and when
// no JWT secret is configured.
func AuthMiddleware(cfg skills.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Mode == "dev" || cfg.JWTConfig.Secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "Authorization header required"})
			return
		}

		// Bearer token format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "Invalid authorization header format"})
			return
		}

		claims, err := pkg.ValidateToken(parts[1], cfg.JWTConfig.Secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "Invalid or expired token"})
			return
		}

		c.Set("user", claims.User)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware. Without a role in the context
// (auth disabled) the request passes.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("userRole")
		if !exists {
			c.Next()
			return
		}

		role, _ := userRole.(string)
		for _, allowedRole := range roles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.APIError{Message: "Insufficient permissions"})
	}
}

// User returns the authenticated user, or "anonymous"
func User(c *gin.Context) string {
	if user := c.GetString("user"); user != "" {
		return user
	}
	return "anonymous"
}
