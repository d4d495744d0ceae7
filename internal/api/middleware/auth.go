package middleware

import (
	"net/http"
	"strings"

	"titledb/internal/api/permissions"
	"titledb/internal/api/repository"
	"titledb/internal/api/service"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthMiddleware validates the bearer token and loads the caller from
// the users table, so role changes take effect on the next request
// rather than at the next token refresh.
func AuthMiddleware(authService service.AuthService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(identityKey, permissions.FromUser(user))
		c.Next()
	}
}

// IdentityFrom returns the caller identity set by AuthMiddleware.
func IdentityFrom(c *gin.Context) (permissions.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return permissions.Identity{}, false
	}
	ident, ok := v.(permissions.Identity)
	return ident, ok
}

// RequireAdmin gates catalogue writes and user management.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "identity not found"})
			c.Abort()
			return
		}
		if !permissions.IsAdmin(ident) {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
