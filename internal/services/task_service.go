package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/project-todo-api/internal/constants"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidTaskTitle   = errors.New("task title is required and must be at most 255 characters")
	ErrDeadlineRequired   = errors.New("deadline is required")
	ErrPerformerNotMember = errors.New("performer must be a member of the project")
	ErrNotTaskOwner       = errors.New("only the project owner or the performer can do this")
	ErrSuggestTextEmpty   = errors.New("text is required")
)

var taskDetail = []string{"Performer", "Status", "Priority"}

// TaskService manages tasks inside projects.
type TaskService struct {
	tasks      repository.TaskRepository
	projects   repository.ProjectRepository
	access     *ProjectService
	references *ReferenceService
	ai         *AIService
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	access *ProjectService,
	references *ReferenceService,
	ai *AIService,
) *TaskService {
	return &TaskService{
		tasks:      tasks,
		projects:   projects,
		access:     access,
		references: references,
		ai:         ai,
	}
}

// CreateTaskInput represents the information needed to create a task.
// PerformerID defaults to the actor; StatusID and PriorityID default to the
// first seeded status and priority.
type CreateTaskInput struct {
	Title       string
	Text        string
	Deadline    *time.Time
	PerformerID *uint64
	StatusID    *uint64
	PriorityID  *uint64
}

// Create adds a task to a project the actor belongs to.
func (s *TaskService) Create(projectID, actorID uint64, input CreateTaskInput) (*models.Task, error) {
	if err := s.access.RequireMember(projectID, actorID); err != nil {
		return nil, err
	}

	title, err := validateTaskTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if input.Deadline == nil || input.Deadline.IsZero() {
		return nil, ErrDeadlineRequired
	}

	performerID := actorID
	if input.PerformerID != nil {
		performerID = *input.PerformerID
	}
	if err := s.requirePerformer(projectID, performerID); err != nil {
		return nil, err
	}

	status, err := s.references.Status(input.StatusID)
	if err != nil {
		return nil, err
	}
	priority, err := s.references.Priority(input.PriorityID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Text:        input.Text,
		Deadline:    *input.Deadline,
		ProjectID:   projectID,
		PerformerID: performerID,
		StatusID:    status.ID,
		PriorityID:  priority.ID,
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.find(task.ID)
}

// Get returns a task visible to the actor.
func (s *TaskService) Get(id, actorID uint64) (*models.Task, error) {
	task, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireMember(task.ProjectID, actorID); err != nil {
		return nil, err
	}
	return task, nil
}

// TaskListInput narrows a listing. Empty slugs match everything.
type TaskListInput struct {
	StatusSlug   string
	PrioritySlug string
	PerformerID  *uint64
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	Page         int
	PageSize     int
}

// ListByProject lists the tasks of one project.
func (s *TaskService) ListByProject(projectID, actorID uint64, input TaskListInput) ([]models.Task, int64, error) {
	if err := s.access.RequireMember(projectID, actorID); err != nil {
		return nil, 0, err
	}
	return s.list([]uint64{projectID}, input)
}

// List lists tasks across every project the actor belongs to.
func (s *TaskService) List(actorID uint64, input TaskListInput) ([]models.Task, int64, error) {
	projectIDs, err := s.projects.MemberProjectIDs(actorID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return s.list(projectIDs, input)
}

func (s *TaskService) list(projectIDs []uint64, input TaskListInput) ([]models.Task, int64, error) {
	tasks, total, err := s.tasks.List(repository.TaskFilter{
		ProjectIDs:   projectIDs,
		StatusSlug:   input.StatusSlug,
		PrioritySlug: input.PrioritySlug,
		PerformerID:  input.PerformerID,
		DeadlineFrom: input.DeadlineFrom,
		DeadlineTo:   input.DeadlineTo,
		Page:         input.Page,
		PageSize:     input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTaskInput carries a partial update. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Text        *string
	Deadline    *time.Time
	PerformerID *uint64
	StatusID    *uint64
	PriorityID  *uint64
}

// Update patches a task. Any project member may edit.
func (s *TaskService) Update(id, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.Get(id, actorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTaskTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Text != nil {
		task.Text = *input.Text
	}
	if input.Deadline != nil {
		if input.Deadline.IsZero() {
			return nil, ErrDeadlineRequired
		}
		task.Deadline = *input.Deadline
	}
	if input.PerformerID != nil {
		if err := s.requirePerformer(task.ProjectID, *input.PerformerID); err != nil {
			return nil, err
		}
		task.PerformerID = *input.PerformerID
	}
	if input.StatusID != nil {
		status, err := s.references.Status(input.StatusID)
		if err != nil {
			return nil, err
		}
		task.StatusID = status.ID
	}
	if input.PriorityID != nil {
		priority, err := s.references.Priority(input.PriorityID)
		if err != nil {
			return nil, err
		}
		task.PriorityID = priority.ID
	}

	if err := s.tasks.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.find(id)
}

// Delete removes a task. Only the project owner or the performer may do this.
func (s *TaskService) Delete(id, actorID uint64) error {
	task, err := s.find(id)
	if err != nil {
		return err
	}

	project, err := s.access.find(task.ProjectID)
	if err != nil {
		return err
	}
	if project.OwnerID != actorID && task.PerformerID != actorID {
		return ErrNotTaskOwner
	}

	if err := s.tasks.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Suggest drafts tasks for a project from free text. Nothing is stored.
func (s *TaskService) Suggest(ctx context.Context, projectID, actorID uint64, text string) ([]TaskDraft, error) {
	if !s.ai.Enabled() {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrSuggestTextEmpty
	}

	if err := s.access.RequireMember(projectID, actorID); err != nil {
		return nil, err
	}
	project, err := s.access.find(projectID)
	if err != nil {
		return nil, err
	}

	return s.ai.SuggestTasks(ctx, project.Title, text)
}

func (s *TaskService) requirePerformer(projectID, userID uint64) error {
	ok, err := s.access.IsMember(projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPerformerNotMember
	}
	return nil
}

func (s *TaskService) find(id uint64) (*models.Task, error) {
	task, err := s.tasks.FindByID(id, taskDetail...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func validateTaskTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return "", ErrInvalidTaskTitle
	}
	return title, nil
}
