package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-todo-api/internal/dto"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/middleware"
	"github.com/yukikurage/project-todo-api/internal/services"
	"github.com/yukikurage/project-todo-api/internal/utils"
)

type TaskHandler struct {
	taskService   *services.TaskService
	publicBaseURL string
}

func NewTaskHandler(taskService *services.TaskService, publicBaseURL string) *TaskHandler {
	return &TaskHandler{
		taskService:   taskService,
		publicBaseURL: publicBaseURL,
	}
}

// ListTasks returns tasks from every project the current user belongs to
// Can filter by status and priority slug
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input, ok := taskListInput(c)
	if !ok {
		return
	}

	tasks, total, err := h.taskService.List(userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, requestBaseURL(c, h.publicBaseURL), input.Page, input.PageSize, total))
}

// ListProjectTasks returns the tasks of one project
// Membership is already checked by RequireProjectMember middleware
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	projectID, ok := middleware.GetProjectID(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	input, ok := taskListInput(c)
	if !ok {
		return
	}

	tasks, total, err := h.taskService.ListByProject(projectID, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, requestBaseURL(c, h.publicBaseURL), input.Page, input.PageSize, total))
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, requestBaseURL(c, h.publicBaseURL)))
}

// CreateTask creates a new task in the project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	projectID, ok := middleware.GetProjectID(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Text        string     `json:"text"`
		Deadline    *time.Time `json:"deadline" binding:"required"`
		PerformerID *uint64    `json:"performer_id"`
		StatusID    *uint64    `json:"status_id"`
		PriorityID  *uint64    `json:"priority_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(projectID, userID, services.CreateTaskInput{
		Title:       req.Title,
		Text:        req.Text,
		Deadline:    req.Deadline,
		PerformerID: req.PerformerID,
		StatusID:    req.StatusID,
		PriorityID:  req.PriorityID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, requestBaseURL(c, h.publicBaseURL)))
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Title       *string    `json:"title"`
		Text        *string    `json:"text"`
		Deadline    *time.Time `json:"deadline"`
		PerformerID *uint64    `json:"performer_id"`
		StatusID    *uint64    `json:"status_id"`
		PriorityID  *uint64    `json:"priority_id"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.Update(task.ID, userID, services.UpdateTaskInput{
		Title:       req.Title,
		Text:        req.Text,
		Deadline:    req.Deadline,
		PerformerID: req.PerformerID,
		StatusID:    req.StatusID,
		PriorityID:  req.PriorityID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated, requestBaseURL(c, h.publicBaseURL)))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.Delete(task.ID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// SuggestTasks drafts tasks from free text using AI
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	projectID, ok := middleware.GetProjectID(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	type SuggestTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.Suggest(c.Request.Context(), projectID, userID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDraftDTOs(drafts),
	})
}

func taskListInput(c *gin.Context) (services.TaskListInput, bool) {
	params := utils.GetPaginationParams(c)
	input := services.TaskListInput{
		StatusSlug:   c.Query("status"),
		PrioritySlug: c.Query("priority"),
		Page:         params.Page,
		PageSize:     params.Limit,
	}

	if v := c.Query("performer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid performer_id")
			return input, false
		}
		input.PerformerID = &id
	}

	for _, f := range []struct {
		name string
		dst  **time.Time
	}{
		{"deadline_from", &input.DeadlineFrom},
		{"deadline_to", &input.DeadlineTo},
	} {
		v := c.Query(f.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid "+f.name)
			return input, false
		}
		*f.dst = &t
	}

	return input, true
}
