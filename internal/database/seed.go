package database

import (
	"fmt"

	"github.com/gosimple/slug"
	"github.com/yukikurage/project-todo-api/internal/constants"
	"github.com/yukikurage/project-todo-api/internal/models"
	"gorm.io/gorm"
)

var (
	seedRoles      = []string{constants.RoleAdmin, constants.RoleUser}
	seedStatuses   = []string{"To do", "In progress", "Done"}
	seedPriorities = []string{"Low", "Medium", "High"}
)

// Seed inserts the reference rows the application relies on. Running it twice is a no-op.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range seedRoles {
			role := models.Role{Name: name, Slug: slug.Make(name)}
			if err := firstOrCreate(tx, &role, role.Slug); err != nil {
				return fmt.Errorf("failed to seed role %s: %w", name, err)
			}
		}

		for _, title := range seedStatuses {
			status := models.TaskStatus{Title: title, Slug: slug.Make(title)}
			if err := firstOrCreate(tx, &status, status.Slug); err != nil {
				return fmt.Errorf("failed to seed task status %s: %w", title, err)
			}
		}

		for _, title := range seedPriorities {
			priority := models.Priority{Title: title, Slug: slug.Make(title)}
			if err := firstOrCreate(tx, &priority, priority.Slug); err != nil {
				return fmt.Errorf("failed to seed priority %s: %w", title, err)
			}
		}

		return nil
	})
}

func firstOrCreate(tx *gorm.DB, row interface{}, slugValue string) error {
	var count int64
	if err := tx.Model(row).Where("slug = ?", slugValue).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(row).Error
}
