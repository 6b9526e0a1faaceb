package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-todo-api/internal/dto"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/services"
)

// ReferenceHandler serves task statuses and priorities
type ReferenceHandler struct {
	referenceService *services.ReferenceService
}

func NewReferenceHandler(referenceService *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

type createReferenceRequest struct {
	Title string `json:"title" binding:"required"`
	Slug  string `json:"slug"`
}

func (h *ReferenceHandler) ListStatuses(c *gin.Context) {
	statuses, err := h.referenceService.ListStatuses()
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.ReferenceDTO, len(statuses))
	for i, s := range statuses {
		out[i] = dto.ToStatusDTO(s)
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReferenceHandler) CreateStatus(c *gin.Context) {
	var req createReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	status, err := h.referenceService.CreateStatus(req.Title, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToStatusDTO(*status))
}

func (h *ReferenceHandler) ListPriorities(c *gin.Context) {
	priorities, err := h.referenceService.ListPriorities()
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.ReferenceDTO, len(priorities))
	for i, p := range priorities {
		out[i] = dto.ToPriorityDTO(p)
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReferenceHandler) CreatePriority(c *gin.Context) {
	var req createReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	priority, err := h.referenceService.CreatePriority(req.Title, req.Slug)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPriorityDTO(*priority))
}
