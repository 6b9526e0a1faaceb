package dto

import (
	"time"

	"github.com/yukikurage/project-todo-api/internal/models"
)

// ProjectListItemDTO represents a project in list responses (minimal data)
type ProjectListItemDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// ProjectDTO represents a freshly created or renamed project
type ProjectDTO struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Owner     UserDTO   `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectDetailDTO represents detailed project information
type ProjectDetailDTO struct {
	ProjectDTO
	ParticipatingUsers []UserDTO `json:"participating_users"`
	Tasks              []TaskDTO `json:"tasks"`
}

// InvitationDTO represents a project invitation in API responses
type InvitationDTO struct {
	ID        uint64                  `json:"id"`
	ProjectID uint64                  `json:"project_id"`
	InvitedID uint64                  `json:"invited_id"`
	InviterID uint64                  `json:"inviter_id"`
	Status    models.InvitationStatus `json:"status"`
	Project   *ProjectListItemDTO     `json:"project,omitempty"`
	Invited   *UserDTO                `json:"invited,omitempty"`
	Inviter   *UserDTO                `json:"inviter,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// ToProjectListItemDTO converts a Project model to ProjectListItemDTO
func ToProjectListItemDTO(project models.Project) ProjectListItemDTO {
	return ProjectListItemDTO{
		ID:    project.ID,
		Title: project.Title,
	}
}

// ToProjectListItemDTOs converts projects to list DTOs
func ToProjectListItemDTOs(projects []models.Project) []ProjectListItemDTO {
	out := make([]ProjectListItemDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectListItemDTO(p)
	}
	return out
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project, baseURL string) ProjectDTO {
	return ProjectDTO{
		ID:        project.ID,
		Title:     project.Title,
		Owner:     ToUserDTO(project.Owner, baseURL),
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

// ToProjectDetailDTO converts a project with participants and tasks
func ToProjectDetailDTO(project models.Project, baseURL string) ProjectDetailDTO {
	tasks := make([]TaskDTO, len(project.Tasks))
	for i, t := range project.Tasks {
		tasks[i] = ToTaskDTO(t, baseURL)
	}

	return ProjectDetailDTO{
		ProjectDTO:         ToProjectDTO(project, baseURL),
		ParticipatingUsers: ToUserDTOs(project.ParticipatingUsers, baseURL),
		Tasks:              tasks,
	}
}

// ToInvitationDTO converts an invitation, including relations when preloaded
func ToInvitationDTO(inv models.ProjectInvitation, baseURL string) InvitationDTO {
	dto := InvitationDTO{
		ID:        inv.ID,
		ProjectID: inv.ProjectID,
		InvitedID: inv.InvitedID,
		InviterID: inv.InviterID,
		Status:    inv.Status,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}

	if inv.Project.ID != 0 {
		project := ToProjectListItemDTO(inv.Project)
		dto.Project = &project
	}
	if inv.Invited.ID != 0 {
		invited := ToUserDTO(inv.Invited, baseURL)
		dto.Invited = &invited
	}
	if inv.Inviter.ID != 0 {
		inviter := ToUserDTO(inv.Inviter, baseURL)
		dto.Inviter = &inviter
	}

	return dto
}

// ToInvitationDTOs converts invitations to DTOs
func ToInvitationDTOs(invitations []models.ProjectInvitation, baseURL string) []InvitationDTO {
	out := make([]InvitationDTO, len(invitations))
	for i, inv := range invitations {
		out[i] = ToInvitationDTO(inv, baseURL)
	}
	return out
}
