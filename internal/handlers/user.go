package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-todo-api/internal/dto"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/services"
	"github.com/yukikurage/project-todo-api/internal/utils"
)

// UserHandler exposes the user directory. Mutations are admin-only at the router.
type UserHandler struct {
	userService   *services.UserService
	publicBaseURL string
}

func NewUserHandler(userService *services.UserService, publicBaseURL string) *UserHandler {
	return &UserHandler{
		userService:   userService,
		publicBaseURL: publicBaseURL,
	}
}

// ListUsers returns a page of users
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.List(params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserListResponse{
		Users:      dto.ToUserDTOs(users, requestBaseURL(c, h.publicBaseURL)),
		Pagination: utils.NewPaginationResponse(params, total),
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user, requestBaseURL(c, h.publicBaseURL)))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Email     string   `json:"email" binding:"required,email"`
		Password  string   `json:"password" binding:"required"`
		FirstName string   `json:"first_name" binding:"required"`
		LastName  string   `json:"last_name" binding:"required"`
		Roles     []uint64 `json:"roles"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Create(services.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user, requestBaseURL(c, h.publicBaseURL)))
}

// ReplaceUser applies full-update semantics
func (h *UserHandler) ReplaceUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type ReplaceUserRequest struct {
		Email     string    `json:"email" binding:"required,email"`
		FirstName string    `json:"first_name"`
		LastName  string    `json:"last_name"`
		Password  *string   `json:"password"`
		Roles     *[]uint64 `json:"roles"`
	}

	var req ReplaceUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Update(id, services.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Roles:     req.Roles,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user, requestBaseURL(c, h.publicBaseURL)))
}

// PatchUser only touches fields present in the body
func (h *UserHandler) PatchUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type PatchUserRequest struct {
		Email     *string   `json:"email" binding:"omitempty,email"`
		FirstName *string   `json:"first_name"`
		LastName  *string   `json:"last_name"`
		Password  *string   `json:"password"`
		Roles     *[]uint64 `json:"roles"`
	}

	var req PatchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Patch(id, services.PatchUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Roles:     req.Roles,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user, requestBaseURL(c, h.publicBaseURL)))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
