package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-todo-api/internal/dto"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/middleware"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/services"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
	publicBaseURL     string
}

func NewInvitationHandler(invitationService *services.InvitationService, publicBaseURL string) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		publicBaseURL:     publicBaseURL,
	}
}

// CreateInvitation invites a user to a project owned by the current user
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateInvitationRequest struct {
		ProjectID uint64 `json:"project_id" binding:"required"`
		InvitedID uint64 `json:"invited_id" binding:"required"`
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invitation, err := h.invitationService.Create(c.Request.Context(), services.CreateInvitationInput{
		ProjectID: req.ProjectID,
		InvitedID: req.InvitedID,
		InviterID: userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvitationDTO(*invitation, requestBaseURL(c, h.publicBaseURL)))
}

// ListReceived returns invitations addressed to the current user
func (h *InvitationHandler) ListReceived(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	invitations, err := h.invitationService.ListReceived(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTOs(invitations, requestBaseURL(c, h.publicBaseURL)))
}

// ListSent returns invitations the current user has sent
func (h *InvitationHandler) ListSent(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	invitations, err := h.invitationService.ListSent(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTOs(invitations, requestBaseURL(c, h.publicBaseURL)))
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	h.resolve(c, h.invitationService.Accept)
}

func (h *InvitationHandler) Decline(c *gin.Context) {
	h.resolve(c, h.invitationService.Decline)
}

func (h *InvitationHandler) resolve(c *gin.Context, transition func(invitationID, userID uint64) (*models.ProjectInvitation, error)) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	invitationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invitation, err := transition(invitationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation, requestBaseURL(c, h.publicBaseURL)))
}
