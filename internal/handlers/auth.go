package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-todo-api/internal/constants"
	"github.com/yukikurage/project-todo-api/internal/dto"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/media"
	"github.com/yukikurage/project-todo-api/internal/middleware"
	"github.com/yukikurage/project-todo-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService   *services.AuthService
	userService   *services.UserService
	store         media.Store
	publicBaseURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, store media.Store, publicBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		userService:   userService,
		store:         store,
		publicBaseURL: publicBaseURL,
	}
}

// Register creates a new account.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProfileDTO(*user, requestBaseURL(c, h.publicBaseURL)))
}

// Login authenticates a user and issues an access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		Email:        result.User.Email,
		FullName:     result.User.FullName(),
	})
}

// SendOTP mails a registration code to an address without an account.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	type OTPRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.SendRegistrationOTP(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// CheckOTP consumes a previously sent code.
func (h *AuthHandler) CheckOTP(c *gin.Context) {
	type OTPCheckRequest struct {
		Email string `json:"email" binding:"required,email"`
		Code  int    `json:"code" binding:"required"`
	}

	var req OTPCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.CheckOTP(req.Email, req.Code); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code confirmed"})
}

// ForgotPassword mails a reset code to an existing account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.SendPasswordResetOTP(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reset code sent"})
}

// ResetPassword sets a new password after checking the reset code.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Code     int    `json:"code" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(req.Email, req.Code, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

// ChangePassword replaces the signed-in user's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type ChangePasswordRequest struct {
		OldPassword string `json:"old_password" binding:"required"`
		Password    string `json:"password" binding:"required"`
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ChangePassword(userID, req.OldPassword, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// RefreshToken exchanges a refresh token for a new access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	access, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: access,
		TokenType:   constants.TokenTypeAccess,
	})
}

// Logout is a client-side discard; the server keeps no token state.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user, requestBaseURL(c, h.publicBaseURL)))
}

// UpdateCurrentUser edits the profile from a multipart form with an optional avatar.
func (h *AuthHandler) UpdateCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var input services.ProfileInput
	if v, ok := c.GetPostForm("first_name"); ok {
		input.FirstName = &v
	}
	if v, ok := c.GetPostForm("last_name"); ok {
		input.LastName = &v
	}
	if v, ok := c.GetPostForm("email"); ok {
		input.Email = &v
	}

	if _, err := c.FormFile("image"); err == nil {
		path, ok := h.saveUpload(c, "image", constants.MediaSubfolderAvatars)
		if !ok {
			return
		}
		input.Image = &path
	}

	user, err := h.userService.UpdateProfile(userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user, requestBaseURL(c, h.publicBaseURL)))
}

// UploadFile stores an image and returns its public URL.
func (h *AuthHandler) UploadFile(c *gin.Context) {
	path, ok := h.saveUpload(c, "file", constants.MediaSubfolderUploads)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": *dto.MediaURL(requestBaseURL(c, h.publicBaseURL), path),
	})
}

func (h *AuthHandler) saveUpload(c *gin.Context, field, subfolder string) (string, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		apierrors.BadRequest(c, "File is required")
		return "", false
	}
	if header.Size > constants.MaxUploadSize {
		apierrors.BadRequest(c, "File is too large")
		return "", false
	}

	file, err := header.Open()
	if err != nil {
		apierrors.BadRequest(c, "Failed to read file")
		return "", false
	}
	defer file.Close()

	path, err := h.store.Save(c.Request.Context(), file, header.Filename, header.Header.Get("Content-Type"), subfolder)
	if err != nil {
		if errors.Is(err, media.ErrNotImage) || errors.Is(err, media.ErrInvalidName) || errors.Is(err, media.ErrInvalidSubfolder) {
			respondError(c, err)
			return "", false
		}
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to store file")
		return "", false
	}

	return path, true
}
