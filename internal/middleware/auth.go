package middleware

import (
	"net/http"
	"strings"

	"satstream/config"
	"satstream/internal/auth"
	"satstream/internal/models"
	"satstream/internal/repository"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and loads the current user
// from storage. Banned accounts are rejected here; balance and admin
// flags always come from this fresh load, never from the token alone.
func AuthRequired(cfg *config.JWTConfig, userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		u, err := userRepo.GetByID(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if u.IsBanned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is banned"})
			return
		}
		c.Set("user", u)
		c.Set("user_id", u.ID)
		c.Next()
	}
}

// AdminRequired checks that the authenticated user has the admin flag.
// Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := GetUser(c)
		if u == nil || !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// GetUser returns the authenticated user from context (must be used
// after AuthRequired).
func GetUser(c *gin.Context) *models.User {
	v, _ := c.Get("user")
	if v == nil {
		return nil
	}
	return v.(*models.User)
}

// GetUserID returns the authenticated user ID from context.
func GetUserID(c *gin.Context) uint {
	v, _ := c.Get("user_id")
	if v == nil {
		return 0
	}
	return v.(uint)
}
