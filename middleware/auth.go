package middleware

import (
	"net/http"
	"strings"

	"cakeshop/common/auth"
	apperrors "cakeshop/common/errors"
	"cakeshop/models"

	"github.com/gin-gonic/gin"
)

const (
	UserContextKey     = "userID"
	IdentityContextKey = "identity"
)

// TokenValidator turns a session credential into an identity.
type TokenValidator interface {
	ValidateToken(tokenStr string) (*models.Identity, error)
}

// Identity resolves the caller from the auth-token cookie or a Bearer
// header. A missing or invalid credential leaves the caller anonymous; it
// never rejects the request on its own.
func Identity(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := credential(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := tokens.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Set(UserContextKey, identity.UserID)
		c.Set("role", string(identity.Role))
		c.Set("email", identity.Email)
		c.Next()
	}
}

func credential(c *gin.Context) string {
	if v, err := c.Cookie(auth.CookieName); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// GetIdentity returns the resolved caller, or nil when anonymous.
func GetIdentity(c *gin.Context) *models.Identity {
	if val, ok := c.Get(IdentityContextKey); ok {
		if id, ok := val.(*models.Identity); ok {
			return id
		}
	}
	return nil
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.Unauthorized(""))
			return
		}
		c.Next()
	}
}

// AdminOnly restricts access to admin role. Anyone else gets 401.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIdentity(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.Unauthorized(""))
			return
		}
		c.Next()
	}
}
