package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-todo-api/internal/dto"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/middleware"
	"github.com/yukikurage/project-todo-api/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	publicBaseURL  string
}

func NewProjectHandler(projectService *services.ProjectService, publicBaseURL string) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		publicBaseURL:  publicBaseURL,
	}
}

// CreateProject creates a new project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Title string `json:"title" binding:"required"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(req.Title, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project, requestBaseURL(c, h.publicBaseURL)))
}

// ListProjects returns the projects the user owns or participates in
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projects, err := h.projectService.ListForUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListItemDTOs(projects))
}

// GetProject returns project details
// Membership is already checked by RequireProjectMember middleware
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := middleware.GetProjectID(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	project, err := h.projectService.Get(projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project, requestBaseURL(c, h.publicBaseURL)))
}

// UpdateProject renames a project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Title string `json:"title" binding:"required"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateTitle(projectID, userID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project, requestBaseURL(c, h.publicBaseURL)))
}

// DeleteProject deletes a project with its tasks, invitations and participants
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(projectID, userID, middleware.IsAdmin(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// RemoveParticipant removes a user from the project
func (h *ProjectHandler) RemoveParticipant(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	participantID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.projectService.RemoveParticipant(projectID, userID, participantID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Participant removed successfully"})
}
