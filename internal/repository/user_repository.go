package repository

import (
	"fmt"

	"github.com/yukikurage/project-todo-api/internal/database"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Omit("Roles.*").Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Roles").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether a user other than excludeID has the email
func (r *GormUserRepository) EmailTaken(email string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves a page of users ordered by ID
func (r *GormUserRepository) List(params utils.PaginationParams) ([]models.User, int64, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := r.db.
		Preload("Roles").
		Order("id ASC").
		Scopes(database.Paginate(params)).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update persists the user's scalar fields and optionally replaces its roles
func (r *GormUserRepository) Update(user *models.User, roleIDs *[]uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).
			Select("Email", "Password", "FirstName", "LastName", "Image").
			Updates(user).Error; err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		if roleIDs == nil {
			return nil
		}

		if err := tx.Where("users_id = ?", user.ID).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("clear roles: %w", err)
		}

		ids := *roleIDs
		if len(ids) == 0 {
			return nil
		}

		// Unknown role IDs are dropped here.
		var existing []uint64
		if err := tx.Model(&models.Role{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
			return fmt.Errorf("load roles: %w", err)
		}

		if len(existing) == 0 {
			return nil
		}

		links := make([]models.UserRole, len(existing))
		for i, roleID := range existing {
			links[i] = models.UserRole{UsersID: user.ID, RolesID: roleID}
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return fmt.Errorf("link roles: %w", err)
		}

		return nil
	})
}

// AddRole links a role to a user if it is not linked yet
func (r *GormUserRepository) AddRole(userID, roleID uint64) error {
	return r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UsersID: userID, RolesID: roleID}).Error
}

// Delete removes the user, its role links, memberships, invitations,
// tasks it performs and projects it owns
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var owned []uint64
		if err := tx.Model(&models.Project{}).Where("owner_id = ?", id).Pluck("id", &owned).Error; err != nil {
			return err
		}

		if len(owned) > 0 {
			if err := deleteProjects(tx, owned); err != nil {
				return err
			}
		}

		if err := tx.Where("users_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invited_id = ? OR inviter_id = ?", id, id).Delete(&models.ProjectInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("performer_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}
