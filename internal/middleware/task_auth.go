package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/services"
)

// ContextKeyTask holds the task loaded by RequireTaskAccess
const ContextKeyTask = "task"

// RequireTaskAccess checks if the user has access to a task
// User must be a member of the task's project
func RequireTaskAccess(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "Authentication required")
			return
		}

		task, err := tasks.Get(taskID, userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, services.ErrProjectNotFound):
				apierrors.NotFound(c, "Task not found")
			case errors.Is(err, services.ErrNotProjectMember):
				// Return 404 instead of 403 to avoid leaking task existence
				apierrors.NotFound(c, "Task not found")
			default:
				apierrors.InternalError(c, "Failed to load task")
			}
			return
		}

		c.Set(ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	v, exists := c.Get(ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := v.(*models.Task)
	return task, ok && task != nil
}
