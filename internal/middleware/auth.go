package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/internal/utils"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// Authenticate resolves the bearer token when one is sent. Requests without
// an Authorization header continue anonymously; a malformed or invalid token
// is rejected with 401, as is a token whose account is gone or inactive.
func Authenticate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if !identify(c, db, authHeader) {
			return
		}
		c.Next()
	}
}

// AuthRequired rejects requests that do not carry a valid access token.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextUserID); ok {
			c.Next()
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, response.NewUnauthorized("authentication credentials were not provided"))
			return
		}
		if !identify(c, db, authHeader) {
			return
		}
		c.Next()
	}
}

func identify(c *gin.Context, db *gorm.DB, authHeader string) bool {
	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		response.Error(c, response.NewUnauthorized("invalid authorization header format"))
		return false
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		response.Error(c, response.NewUnauthorized("given token not valid for any token type"))
		return false
	}

	var user models.User
	err = db.WithContext(c.Request.Context()).
		Select("id", "username", "is_active").
		First(&user, claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, response.NewUnauthorized("user not found"))
		return false
	}
	if err != nil {
		response.Error(c, err)
		return false
	}
	if !user.IsActive {
		response.Error(c, response.NewUnauthorized("user is inactive"))
		return false
	}

	c.Set(ContextUserID, user.ID)
	c.Set(ContextUsername, user.Username)
	return true
}

// GetUserID returns the authenticated user ID, or 0 for anonymous requests.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}

func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsername); exists {
		if s, ok := username.(string); ok {
			return s
		}
	}
	return ""
}
