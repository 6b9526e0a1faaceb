package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrRoleNotFound     = errors.New("role not found")
	ErrRoleExists       = errors.New("role with this name or slug already exists")
	ErrRoleNameRequired = errors.New("role name is required")
)

// RoleService manages the role catalogue.
type RoleService struct {
	repo repository.RoleRepository
}

// NewRoleService creates a new RoleService.
func NewRoleService(repo repository.RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

func (s *RoleService) List() ([]models.Role, error) {
	roles, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (s *RoleService) Get(id uint64) (*models.Role, error) {
	role, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	return role, nil
}

// Create adds a role. The slug is derived from the name when empty.
func (s *RoleService) Create(name, roleSlug string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameRequired
	}
	roleSlug = slugOrDerive(roleSlug, name)

	if err := s.ensureUnique(name, roleSlug, 0); err != nil {
		return nil, err
	}

	role := &models.Role{Name: name, Slug: roleSlug}
	if err := s.repo.Create(role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

// Update renames a role. Nil fields keep their value.
func (s *RoleService) Update(id uint64, name, roleSlug *string) (*models.Role, error) {
	role, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, ErrRoleNameRequired
		}
		role.Name = trimmed
	}
	if roleSlug != nil {
		role.Slug = slugOrDerive(*roleSlug, role.Name)
	}

	if err := s.ensureUnique(role.Name, role.Slug, role.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return role, nil
}

func (s *RoleService) Delete(id uint64) error {
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

func (s *RoleService) ensureUnique(name, roleSlug string, excludeID uint64) error {
	exists, err := s.repo.Exists(name, roleSlug, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if exists {
		return ErrRoleExists
	}
	return nil
}

func slugOrDerive(value, from string) string {
	if v := strings.TrimSpace(value); v != "" {
		return slug.Make(v)
	}
	return slug.Make(from)
}
