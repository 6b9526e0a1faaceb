package repository

import (
	"github.com/yukikurage/project-todo-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit(clause.Associations).Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// ListForUser lists projects the user owns or participates in
func (r *GormProjectRepository) ListForUser(userID uint64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Where("owner_id = ? OR id IN (?)", userID, participationSubQuery(r.db, userID)).
		Order("id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// MemberProjectIDs returns the IDs of projects the user owns or participates in
func (r *GormProjectRepository) MemberProjectIDs(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.Project{}).
		Where("owner_id = ? OR id IN (?)", userID, participationSubQuery(r.db, userID)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func participationSubQuery(db *gorm.DB, userID uint64) *gorm.DB {
	return db.Model(&models.ProjectParticipant{}).Select("project_id").Where("user_id = ?", userID)
}

// UpdateTitle renames a project
func (r *GormProjectRepository) UpdateTitle(id uint64, title string) error {
	result := r.db.Model(&models.Project{}).Where("id = ?", id).Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete deletes a project and all related data
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		return deleteProjects(tx, []uint64{id})
	})
}

// deleteProjects removes projects and their dependents. It must run inside a transaction.
func deleteProjects(tx *gorm.DB, ids []uint64) error {
	if err := tx.Where("project_id IN ?", ids).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_id IN ?", ids).Delete(&models.ProjectInvitation{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_id IN ?", ids).Delete(&models.ProjectParticipant{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Project{}).Error
}

// IsParticipant reports whether the user is in the participant set
func (r *GormProjectRepository) IsParticipant(projectID, userID uint64) (bool, error) {
	return isParticipant(r.db, projectID, userID)
}

func isParticipant(db *gorm.DB, projectID, userID uint64) (bool, error) {
	var count int64
	err := db.Model(&models.ProjectParticipant{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RemoveParticipant removes the user from the participant set
func (r *GormProjectRepository) RemoveParticipant(projectID, userID uint64) error {
	result := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.ProjectParticipant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
