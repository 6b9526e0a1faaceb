package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/project-todo-api/internal/database"
	"github.com/yukikurage/project-todo-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvitationNotPending is returned when a status transition finds the invitation already resolved.
	ErrInvitationNotPending = errors.New("invitation repository: invitation is not pending")
	// ErrDeliver is returned when the deliver callback fails and the insert is rolled back.
	ErrDeliver = errors.New("invitation repository: deliver failed")
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create inserts the invitation and delivers the notice atomically.
func (r *GormInvitationRepository) Create(invitation *models.ProjectInvitation, deliver func(*models.ProjectInvitation) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(invitation).Error; err != nil {
			return err
		}

		if deliver == nil {
			return nil
		}

		if err := deliver(invitation); err != nil {
			return fmt.Errorf("%w: %w", ErrDeliver, err)
		}

		return nil
	})
}

// FindByID finds an invitation by ID with optional preloading
func (r *GormInvitationRepository) FindByID(id uint64, preload ...string) (*models.ProjectInvitation, error) {
	var invitation models.ProjectInvitation
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&invitation, id).Error; err != nil {
		return nil, err
	}

	return &invitation, nil
}

// HasPending reports whether a pending invitation exists for the pair
func (r *GormInvitationRepository) HasPending(projectID, invitedID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.ProjectInvitation{}).
		Where("project_id = ? AND invited_id = ? AND status = ?", projectID, invitedID, models.InvitationStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Accept flips the invitation to accepted and adds the membership in one transaction.
func (r *GormInvitationRepository) Accept(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := resolve(tx, id, models.InvitationStatusAccepted); err != nil {
			return err
		}

		var invitation models.ProjectInvitation
		if err := tx.First(&invitation, id).Error; err != nil {
			return err
		}

		// Project and invitee may have been removed since the invitation was read.
		if err := tx.Select("id").First(&models.Project{}, invitation.ProjectID).Error; err != nil {
			return err
		}
		if err := tx.Select("id").First(&models.User{}, invitation.InvitedID).Error; err != nil {
			return err
		}

		member, err := isParticipant(tx, invitation.ProjectID, invitation.InvitedID)
		if err != nil {
			return err
		}
		if member {
			return nil
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ProjectParticipant{ProjectID: invitation.ProjectID, UserID: invitation.InvitedID}).Error
	})
}

// Decline flips the invitation to declined
func (r *GormInvitationRepository) Decline(id uint64) error {
	return resolve(r.db, id, models.InvitationStatusDeclined)
}

// resolve is a compare-and-swap on the pending status; losing the race yields ErrInvitationNotPending.
func resolve(db *gorm.DB, id uint64, status models.InvitationStatus) error {
	result := db.Model(&models.ProjectInvitation{}).
		Where("id = ? AND status = ?", id, models.InvitationStatusPending).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotPending
	}
	return nil
}

// ListReceived lists invitations addressed to the user, newest first
func (r *GormInvitationRepository) ListReceived(invitedID uint64) ([]models.ProjectInvitation, error) {
	return r.list("invited_id = ?", invitedID)
}

// ListSent lists invitations the user has sent, newest first
func (r *GormInvitationRepository) ListSent(inviterID uint64) ([]models.ProjectInvitation, error) {
	return r.list("inviter_id = ?", inviterID)
}

func (r *GormInvitationRepository) list(cond string, userID uint64) ([]models.ProjectInvitation, error) {
	var invitations []models.ProjectInvitation
	err := r.db.
		Preload("Project").
		Preload("Invited").
		Preload("Inviter").
		Where(cond, userID).
		Scopes(database.Newest).
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}
