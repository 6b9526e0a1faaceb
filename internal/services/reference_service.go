package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrSlugTaken        = errors.New("slug already exists")
	ErrStatusNotFound   = errors.New("task status not found")
	ErrPriorityNotFound = errors.New("priority not found")
)

// ReferenceService manages task statuses and priorities.
type ReferenceService struct {
	repo repository.ReferenceRepository
}

// NewReferenceService creates a new ReferenceService.
func NewReferenceService(repo repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{repo: repo}
}

func (s *ReferenceService) ListStatuses() ([]models.TaskStatus, error) {
	statuses, err := s.repo.ListStatuses()
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	return statuses, nil
}

func (s *ReferenceService) CreateStatus(title, statusSlug string) (*models.TaskStatus, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	statusSlug = slugOrDerive(statusSlug, title)

	taken, err := s.repo.StatusSlugTaken(statusSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return nil, ErrSlugTaken
	}

	status := &models.TaskStatus{Title: title, Slug: statusSlug}
	if err := s.repo.CreateStatus(status); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create status: %w", err)
	}
	return status, nil
}

func (s *ReferenceService) ListPriorities() ([]models.Priority, error) {
	priorities, err := s.repo.ListPriorities()
	if err != nil {
		return nil, fmt.Errorf("failed to list priorities: %w", err)
	}
	return priorities, nil
}

func (s *ReferenceService) CreatePriority(title, prioritySlug string) (*models.Priority, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	prioritySlug = slugOrDerive(prioritySlug, title)

	taken, err := s.repo.PrioritySlugTaken(prioritySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return nil, ErrSlugTaken
	}

	priority := &models.Priority{Title: title, Slug: prioritySlug}
	if err := s.repo.CreatePriority(priority); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create priority: %w", err)
	}
	return priority, nil
}

// Status resolves id to a status, or the default status when id is nil.
func (s *ReferenceService) Status(id *uint64) (*models.TaskStatus, error) {
	var (
		status *models.TaskStatus
		err    error
	)
	if id == nil {
		status, err = s.repo.DefaultStatus()
	} else {
		status, err = s.repo.FindStatusByID(*id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to find status: %w", err)
	}
	return status, nil
}

// Priority resolves id to a priority, or the default priority when id is nil.
func (s *ReferenceService) Priority(id *uint64) (*models.Priority, error) {
	var (
		priority *models.Priority
		err      error
	)
	if id == nil {
		priority, err = s.repo.DefaultPriority()
	} else {
		priority, err = s.repo.FindPriorityByID(*id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriorityNotFound
		}
		return nil, fmt.Errorf("failed to find priority: %w", err)
	}
	return priority, nil
}
