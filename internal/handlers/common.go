package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-todo-api/internal/constants"
	apierrors "github.com/yukikurage/project-todo-api/internal/errors"
	"github.com/yukikurage/project-todo-api/internal/media"
	"github.com/yukikurage/project-todo-api/internal/services"
)

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	// 400
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrOTPExpired):
		apierrors.BadRequestCode(c, apierrors.ErrCodeExpired, err.Error())
	case errors.Is(err, services.ErrInvitationProcessed):
		apierrors.BadRequestCode(c, apierrors.ErrCodeAlreadyProcessed, err.Error())
	case errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrSamePassword),
		errors.Is(err, services.ErrWrongPassword),
		errors.Is(err, services.ErrOTPInvalid),
		errors.Is(err, services.ErrRoleNameRequired),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidProjectTitle),
		errors.Is(err, services.ErrInvalidTaskTitle),
		errors.Is(err, services.ErrDeadlineRequired),
		errors.Is(err, services.ErrPerformerNotMember),
		errors.Is(err, services.ErrStatusNotFound),
		errors.Is(err, services.ErrPriorityNotFound),
		errors.Is(err, services.ErrCannotInviteSelf),
		errors.Is(err, services.ErrSuggestTextEmpty),
		errors.Is(err, media.ErrNotImage),
		errors.Is(err, media.ErrInvalidName),
		errors.Is(err, media.ErrInvalidSubfolder):
		apierrors.BadRequest(c, err.Error())

	// 401
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeInvalidCredentials, err.Error()))
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.InvalidToken(c, "")

	// 403
	case errors.Is(err, services.ErrNotProjectOwner),
		errors.Is(err, services.ErrNotProjectMember),
		errors.Is(err, services.ErrInvitationForbidden),
		errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Forbidden(c, err.Error())

	// 404
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRoleNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrInvitationNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())

	// 409
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrRoleExists),
		errors.Is(err, services.ErrSlugTaken),
		errors.Is(err, services.ErrAlreadyParticipant),
		errors.Is(err, services.ErrInvitationPending):
		apierrors.Conflict(c, err.Error())

	// 5xx
	case errors.Is(err, services.ErrDeliveryFailed):
		apierrors.BadGateway(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		// picked up by the request logger
		_ = c.Error(err)
		apierrors.InternalError(c, "Internal server error")
	}
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

// requestBaseURL prefers the configured public URL and falls back to the request's own origin.
func requestBaseURL(c *gin.Context, public string) string {
	if public != "" {
		return strings.TrimRight(public, "/")
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
