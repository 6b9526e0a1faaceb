package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/project-todo-api/internal/constants"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrNotProjectOwner     = errors.New("only the project owner can do this")
	ErrNotProjectMember    = errors.New("not a member of this project")
	ErrInvalidProjectTitle = errors.New("project title is required and must be at most 255 characters")
	ErrParticipantNotFound = errors.New("user is not a participant of this project")
)

// projectDetail is the preload set for a single project view.
var projectDetail = []string{
	"Owner",
	"Owner.Roles",
	"ParticipatingUsers",
	"ParticipatingUsers.Roles",
	"Tasks",
	"Tasks.Performer",
	"Tasks.Status",
	"Tasks.Priority",
}

// ProjectService owns projects and their participant sets.
type ProjectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository) *ProjectService {
	return &ProjectService{
		projects: projects,
		users:    users,
	}
}

// Create creates a project owned by ownerID.
func (s *ProjectService) Create(title string, ownerID uint64) (*models.Project, error) {
	title, err := validateProjectTitle(title)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find owner: %w", err)
	}

	project := &models.Project{
		Title:   title,
		OwnerID: ownerID,
	}
	if err := s.projects.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.find(project.ID, "Owner", "Owner.Roles")
}

// Get returns a project with owner, participants and tasks loaded.
func (s *ProjectService) Get(id uint64) (*models.Project, error) {
	return s.find(id, projectDetail...)
}

// ListForUser lists projects the user owns or participates in.
func (s *ProjectService) ListForUser(userID uint64) ([]models.Project, error) {
	projects, err := s.projects.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// UpdateTitle renames a project. Only the owner may do this.
func (s *ProjectService) UpdateTitle(id, actorID uint64, title string) (*models.Project, error) {
	title, err := validateProjectTitle(title)
	if err != nil {
		return nil, err
	}

	project, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != actorID {
		return nil, ErrNotProjectOwner
	}

	if err := s.projects.UpdateTitle(id, title); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.Get(id)
}

// Delete removes a project with its tasks, invitations and participants.
// The owner may delete; so may an admin when isAdmin is set.
func (s *ProjectService) Delete(id, actorID uint64, isAdmin bool) error {
	project, err := s.find(id)
	if err != nil {
		return err
	}
	if project.OwnerID != actorID && !isAdmin {
		return ErrNotProjectOwner
	}

	if err := s.projects.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// RemoveParticipant drops userID from the project. Only the owner may do this.
func (s *ProjectService) RemoveParticipant(id, actorID, userID uint64) error {
	project, err := s.find(id)
	if err != nil {
		return err
	}
	if project.OwnerID != actorID {
		return ErrNotProjectOwner
	}

	if err := s.projects.RemoveParticipant(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

// IsMember reports whether the user owns or participates in the project.
func (s *ProjectService) IsMember(projectID, userID uint64) (bool, error) {
	project, err := s.find(projectID)
	if err != nil {
		return false, err
	}
	if project.OwnerID == userID {
		return true, nil
	}

	ok, err := s.projects.IsParticipant(projectID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return ok, nil
}

// RequireMember returns ErrNotProjectMember unless the user is a member.
func (s *ProjectService) RequireMember(projectID, userID uint64) error {
	ok, err := s.IsMember(projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotProjectMember
	}
	return nil
}

func (s *ProjectService) find(id uint64, preload ...string) (*models.Project, error) {
	project, err := s.projects.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func validateProjectTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return "", ErrInvalidProjectTitle
	}
	return title, nil
}
