package dto

import (
	"strings"
	"time"

	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/utils"
)

// RoleDTO represents a role in API responses
type RoleDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Image     *string   `json:"image"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Roles     []RoleDTO `json:"roles"`
}

// ProfileDTO is the signed-in user's own view
type ProfileDTO struct {
	UserDTO
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
}

// TokenResponse is returned by the refresh endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MediaURL joins a stored media path with the public base URL.
// Empty paths stay nil so clients can tell "no image" apart.
func MediaURL(baseURL, path string) *string {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return &path
	}
	url := strings.TrimRight(baseURL, "/") + path
	return &url
}

// ToRoleDTO converts a Role model to RoleDTO
func ToRoleDTO(role models.Role) RoleDTO {
	return RoleDTO{
		ID:        role.ID,
		Name:      role.Name,
		Slug:      role.Slug,
		CreatedAt: role.CreatedAt,
		UpdatedAt: role.UpdatedAt,
	}
}

// ToRoleDTOs converts roles to DTOs
func ToRoleDTOs(roles []models.Role) []RoleDTO {
	out := make([]RoleDTO, len(roles))
	for i, r := range roles {
		out[i] = ToRoleDTO(r)
	}
	return out
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User, baseURL string) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Image:     MediaURL(baseURL, user.Image),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Roles:     ToRoleDTOs(user.Roles),
	}
}

// ToUserDTOs converts users to DTOs
func ToUserDTOs(users []models.User, baseURL string) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u, baseURL)
	}
	return out
}

// ToProfileDTO converts a User model to ProfileDTO
func ToProfileDTO(user models.User, baseURL string) ProfileDTO {
	return ProfileDTO{
		UserDTO:   ToUserDTO(user, baseURL),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
