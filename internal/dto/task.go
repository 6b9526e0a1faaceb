package dto

import (
	"time"

	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/services"
	"github.com/yukikurage/project-todo-api/internal/utils"
)

// ReferenceDTO represents a task status or priority in API responses
type ReferenceDTO struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64        `json:"id"`
	Title       string        `json:"title"`
	Text        string        `json:"text"`
	Deadline    time.Time     `json:"deadline"`
	ProjectID   uint64        `json:"project_id"`
	PerformerID uint64        `json:"performer_id"`
	Performer   *UserDTO      `json:"performer,omitempty"`
	Status      *ReferenceDTO `json:"status,omitempty"`
	Priority    *ReferenceDTO `json:"priority,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// TaskDraftDTO is an AI-suggested task that has not been saved
type TaskDraftDTO struct {
	Title    string     `json:"title"`
	Text     string     `json:"text"`
	Deadline *time.Time `json:"deadline"`
}

// Conversion functions

// ToStatusDTO converts a TaskStatus model to ReferenceDTO
func ToStatusDTO(status models.TaskStatus) ReferenceDTO {
	return ReferenceDTO{
		ID:        status.ID,
		Title:     status.Title,
		Slug:      status.Slug,
		CreatedAt: status.CreatedAt,
		UpdatedAt: status.UpdatedAt,
	}
}

// ToPriorityDTO converts a Priority model to ReferenceDTO
func ToPriorityDTO(priority models.Priority) ReferenceDTO {
	return ReferenceDTO{
		ID:        priority.ID,
		Title:     priority.Title,
		Slug:      priority.Slug,
		CreatedAt: priority.CreatedAt,
		UpdatedAt: priority.UpdatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task, baseURL string) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Text:        task.Text,
		Deadline:    task.Deadline,
		ProjectID:   task.ProjectID,
		PerformerID: task.PerformerID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include relations if preloaded
	if task.Performer.ID != 0 {
		performer := ToUserDTO(task.Performer, baseURL)
		dto.Performer = &performer
	}
	if task.Status.ID != 0 {
		status := ToStatusDTO(task.Status)
		dto.Status = &status
	}
	if task.Priority.ID != 0 {
		priority := ToPriorityDTO(task.Priority)
		dto.Priority = &priority
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, baseURL string, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, baseURL)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: utils.TotalPages(totalCount, pageSize),
	}
}

// ToTaskDraftDTOs converts suggestions to DTOs
func ToTaskDraftDTOs(drafts []services.TaskDraft) []TaskDraftDTO {
	out := make([]TaskDraftDTO, len(drafts))
	for i, d := range drafts {
		out[i] = TaskDraftDTO{Title: d.Title, Text: d.Text, Deadline: d.Deadline}
	}
	return out
}
