package repository

import (
	"github.com/yukikurage/project-todo-api/internal/models"
	"gorm.io/gorm"
)

// GormReferenceRepository is a GORM implementation of ReferenceRepository
type GormReferenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository creates a new ReferenceRepository
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &GormReferenceRepository{db: db}
}

func (r *GormReferenceRepository) ListStatuses() ([]models.TaskStatus, error) {
	var statuses []models.TaskStatus
	if err := r.db.Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *GormReferenceRepository) CreateStatus(status *models.TaskStatus) error {
	return r.db.Create(status).Error
}

func (r *GormReferenceRepository) FindStatusByID(id uint64) (*models.TaskStatus, error) {
	var status models.TaskStatus
	if err := r.db.First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// DefaultStatus returns the first status ever created
func (r *GormReferenceRepository) DefaultStatus() (*models.TaskStatus, error) {
	var status models.TaskStatus
	if err := r.db.Order("id ASC").First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *GormReferenceRepository) StatusSlugTaken(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.TaskStatus{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormReferenceRepository) ListPriorities() ([]models.Priority, error) {
	var priorities []models.Priority
	if err := r.db.Order("id ASC").Find(&priorities).Error; err != nil {
		return nil, err
	}
	return priorities, nil
}

func (r *GormReferenceRepository) CreatePriority(priority *models.Priority) error {
	return r.db.Create(priority).Error
}

func (r *GormReferenceRepository) FindPriorityByID(id uint64) (*models.Priority, error) {
	var priority models.Priority
	if err := r.db.First(&priority, id).Error; err != nil {
		return nil, err
	}
	return &priority, nil
}

// DefaultPriority returns the first priority ever created
func (r *GormReferenceRepository) DefaultPriority() (*models.Priority, error) {
	var priority models.Priority
	if err := r.db.Order("id ASC").First(&priority).Error; err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *GormReferenceRepository) PrioritySlugTaken(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Priority{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
