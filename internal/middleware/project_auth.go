package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/services"
)

// ContextKeyProjectID holds the project ID checked by RequireProjectMember
const ContextKeyProjectID = "project_id"

// RequireProjectMember checks that the user owns or participates in the
// project named by the :id parameter
func RequireProjectMember(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "Authentication required")
			return
		}

		if err := projects.RequireMember(projectID, userID); err != nil {
			switch {
			case errors.Is(err, services.ErrProjectNotFound):
				apierrors.NotFound(c, "Project not found")
			case errors.Is(err, services.ErrNotProjectMember):
				apierrors.Forbidden(c, "You are not a member of this project")
			default:
				apierrors.InternalError(c, "Failed to check project membership")
			}
			return
		}

		c.Set(ContextKeyProjectID, projectID)
		c.Next()
	}
}

// GetProjectID retrieves the project ID set by RequireProjectMember
func GetProjectID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(ContextKeyProjectID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
