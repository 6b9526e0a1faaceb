package repository

import (
	"time"

	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with roles loaded
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email with roles loaded
	FindByEmail(email string) (*models.User, error)

	// EmailTaken reports whether another user already uses the email
	EmailTaken(email string, excludeID uint64) (bool, error)

	// List retrieves a page of users
	List(params utils.PaginationParams) ([]models.User, int64, error)

	// Update persists scalar fields and, when roleIDs is non-nil, replaces the
	// user's roles in the same transaction
	Update(user *models.User, roleIDs *[]uint64) error

	// AddRole links a role to a user if it is not linked yet
	AddRole(userID, roleID uint64) error

	// Delete removes a user together with everything that references it
	Delete(id uint64) error
}

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	Create(role *models.Role) error
	FindByID(id uint64) (*models.Role, error)
	FindBySlug(slug string) (*models.Role, error)
	FindByIDs(ids []uint64) ([]models.Role, error)
	List() ([]models.Role, error)
	Update(role *models.Role) error
	Delete(id uint64) error

	// Exists reports whether a role other than excludeID uses the name or slug
	Exists(name, slug string, excludeID uint64) (bool, error)
}

// ReferenceRepository defines the interface for task statuses and priorities
type ReferenceRepository interface {
	ListStatuses() ([]models.TaskStatus, error)
	CreateStatus(status *models.TaskStatus) error
	FindStatusByID(id uint64) (*models.TaskStatus, error)
	DefaultStatus() (*models.TaskStatus, error)
	StatusSlugTaken(slug string) (bool, error)

	ListPriorities() ([]models.Priority, error)
	CreatePriority(priority *models.Priority) error
	FindPriorityByID(id uint64) (*models.Priority, error)
	DefaultPriority() (*models.Priority, error)
	PrioritySlugTaken(slug string) (bool, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListForUser lists projects the user owns or participates in
	ListForUser(userID uint64) ([]models.Project, error)

	// MemberProjectIDs returns the IDs of projects the user owns or participates in
	MemberProjectIDs(userID uint64) ([]uint64, error)

	// UpdateTitle renames a project
	UpdateTitle(id uint64, title string) error

	// Delete deletes a project with its tasks, invitations and participants
	Delete(id uint64) error

	// IsParticipant reports whether the user is in the participant set
	IsParticipant(projectID, userID uint64) (bool, error)

	// RemoveParticipant removes the user from the participant set
	RemoveParticipant(projectID, userID uint64) error
}

// InvitationRepository defines the interface for project invitation data access
type InvitationRepository interface {
	// Create inserts the invitation and runs deliver inside the same
	// transaction; a deliver error rolls the insert back
	Create(invitation *models.ProjectInvitation, deliver func(*models.ProjectInvitation) error) error

	// FindByID finds an invitation by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.ProjectInvitation, error)

	// HasPending reports whether a pending invitation exists for the pair
	HasPending(projectID, invitedID uint64) (bool, error)

	// Accept moves a pending invitation to accepted and adds the invitee to
	// the project participants in one transaction
	Accept(id uint64) error

	// Decline moves a pending invitation to declined
	Decline(id uint64) error

	// ListReceived lists invitations addressed to the user
	ListReceived(invitedID uint64) ([]models.ProjectInvitation, error)

	// ListSent lists invitations the user has sent
	ListSent(inviterID uint64) ([]models.ProjectInvitation, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectIDs   []uint64
	StatusSlug   string
	PrioritySlug string
	PerformerID  *uint64
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	Page         int
	PageSize     int
}

// OTPRepository defines the interface for one-time code storage
type OTPRepository interface {
	// Replace stores the code for the email, discarding any previous one
	Replace(otp *models.OTP) error

	// Find finds the record matching both email and code
	Find(email string, code int) (*models.OTP, error)

	// Delete removes a record by ID and reports whether this call removed it
	Delete(id uint64) (bool, error)
}
