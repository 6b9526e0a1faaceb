package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/notification"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrInvitationForbidden = errors.New("this invitation is not addressed to you")
	ErrInvitationProcessed = errors.New("invitation already processed")
	ErrInvitationPending   = errors.New("a pending invitation for this user already exists")
	ErrCannotInviteSelf    = errors.New("cannot invite yourself")
	ErrAlreadyParticipant  = errors.New("user already participates in this project")
	ErrDeliveryFailed      = errors.New("failed to deliver the invitation notice")
)

const invitationSubject = "Project invitation"

// InvitationService drives the pending -> accepted|declined workflow.
type InvitationService struct {
	invitations repository.InvitationRepository
	projects    repository.ProjectRepository
	users       repository.UserRepository
	notifier    notification.Gateway
	log         *slog.Logger
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitations repository.InvitationRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	notifier notification.Gateway,
	log *slog.Logger,
) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		projects:    projects,
		users:       users,
		notifier:    notifier,
		log:         log,
	}
}

// CreateInvitationInput represents the information needed to invite a user.
type CreateInvitationInput struct {
	ProjectID uint64
	InvitedID uint64
	InviterID uint64
}

// Create stores a pending invitation and emails the invitee. The row is only
// kept when the notice was handed to the gateway.
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (*models.ProjectInvitation, error) {
	project, err := s.projects.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.OwnerID != input.InviterID {
		return nil, ErrNotProjectOwner
	}

	invited, err := s.findUser(input.InvitedID)
	if err != nil {
		return nil, err
	}
	inviter, err := s.findUser(input.InviterID)
	if err != nil {
		return nil, err
	}

	if invited.ID == inviter.ID {
		return nil, ErrCannotInviteSelf
	}

	member, err := s.projects.IsParticipant(project.ID, invited.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member {
		return nil, ErrAlreadyParticipant
	}

	pending, err := s.invitations.HasPending(project.ID, invited.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check invitations: %w", err)
	}
	if pending {
		return nil, ErrInvitationPending
	}

	body, err := notification.InvitationBody(inviter.FullName(), project.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to render invitation: %w", err)
	}

	invitation := &models.ProjectInvitation{
		ProjectID: project.ID,
		InvitedID: invited.ID,
		InviterID: inviter.ID,
		Status:    models.InvitationStatusPending,
	}

	err = s.invitations.Create(invitation, func(*models.ProjectInvitation) error {
		return s.notifier.Send(ctx, []string{invited.Email}, invitationSubject, body)
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDeliver):
			s.log.Warn("invitation not delivered", "project_id", project.ID, "invited_id", invited.ID, "error", err)
			return nil, ErrDeliveryFailed
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrInvitationPending
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	invitation.Project = *project
	invitation.Invited = *invited
	invitation.Inviter = *inviter
	return invitation, nil
}

// Accept adds the invitee to the project and marks the invitation accepted.
func (s *InvitationService) Accept(invitationID, userID uint64) (*models.ProjectInvitation, error) {
	if err := s.guard(invitationID, userID); err != nil {
		return nil, err
	}

	if err := s.invitations.Accept(invitationID); err != nil {
		return nil, s.mapTransitionError(err)
	}

	return s.find(invitationID)
}

// Decline marks the invitation declined. Membership is untouched.
func (s *InvitationService) Decline(invitationID, userID uint64) (*models.ProjectInvitation, error) {
	if err := s.guard(invitationID, userID); err != nil {
		return nil, err
	}

	if err := s.invitations.Decline(invitationID); err != nil {
		return nil, s.mapTransitionError(err)
	}

	return s.find(invitationID)
}

// ListReceived lists invitations addressed to the user.
func (s *InvitationService) ListReceived(userID uint64) ([]models.ProjectInvitation, error) {
	invitations, err := s.invitations.ListReceived(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// ListSent lists invitations the user has sent.
func (s *InvitationService) ListSent(userID uint64) ([]models.ProjectInvitation, error) {
	invitations, err := s.invitations.ListSent(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// guard checks existence, then addressee, then status.
func (s *InvitationService) guard(invitationID, userID uint64) error {
	invitation, err := s.invitations.FindByID(invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to find invitation: %w", err)
	}
	if invitation.InvitedID != userID {
		return ErrInvitationForbidden
	}
	if !invitation.IsPending() {
		return ErrInvitationProcessed
	}
	return nil
}

func (s *InvitationService) mapTransitionError(err error) error {
	switch {
	case errors.Is(err, repository.ErrInvitationNotPending):
		return ErrInvitationProcessed
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Project or invitee vanished between the guard and the transaction.
		return ErrInvitationNotFound
	}
	return fmt.Errorf("failed to update invitation: %w", err)
}

func (s *InvitationService) find(id uint64) (*models.ProjectInvitation, error) {
	invitation, err := s.invitations.FindByID(id, "Project", "Invited", "Inviter")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	return invitation, nil
}

func (s *InvitationService) findUser(id uint64) (*models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
