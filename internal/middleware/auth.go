package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-todo-api/internal/constants"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/services"
)

// RequireAuth checks the bearer access token and loads the user it names
func RequireAuth(tokens *services.TokenService, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		claims, err := tokens.Verify(raw, constants.TokenTypeAccess)
		if err != nil {
			apierrors.InvalidToken(c, "Invalid or expired token")
			return
		}

		user, err := users.Get(claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.InvalidToken(c, "User no longer exists")
				return
			}
			apierrors.InternalError(c, "Failed to load user")
			return
		}

		// Store user and ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireRole allows the request only when the current user has the role.
// It must run after RequireAuth.
func RequireRole(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !user.HasRole(slug) {
			apierrors.Forbidden(c, "")
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUser retrieves the current user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// IsAdmin reports whether the current user has the admin role
func IsAdmin(c *gin.Context) bool {
	user, ok := GetUser(c)
	return ok && user.HasRole(constants.RoleAdmin)
}
