package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-todo-api/internal/constants"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"github.com/yukikurage/project-todo-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("old password is incorrect")
	ErrSamePassword       = errors.New("new password must differ from the old one")
)

// UserService manages accounts and their role sets.
type UserService struct {
	users repository.UserRepository
	roles repository.RoleRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, roles repository.RoleRepository) *UserService {
	return &UserService{
		users: users,
		roles: roles,
	}
}

// CreateUserInput represents the information needed to create an account.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Roles     []uint64
}

// Create registers a new account with a hashed password.
func (s *UserService) Create(input CreateUserInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(email, 0); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	roles, err := s.roles.FindByIDs(input.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	user := &models.User{
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Roles:     roles,
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(id uint64) (*models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email.
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	user, err := s.users.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// List returns a page of users and the total count.
func (s *UserService) List(params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.users.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateUserInput carries a full replacement. Password and Roles are applied only when non-nil.
type UpdateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  *string
	Roles     *[]uint64
}

// Update applies every field of the input.
func (s *UserService) Update(id uint64, input UpdateUserInput) (*models.User, error) {
	email := input.Email
	firstName := input.FirstName
	lastName := input.LastName

	return s.Patch(id, PatchUserInput{
		Email:     &email,
		FirstName: &firstName,
		LastName:  &lastName,
		Password:  input.Password,
		Roles:     input.Roles,
	})
}

// PatchUserInput carries a partial update. Nil fields are left untouched.
type PatchUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
	Image     *string
	Roles     *[]uint64
}

// Patch applies only the fields present in the input.
func (s *UserService) Patch(id uint64, input PatchUserInput) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != user.Email {
			if err := s.ensureEmailFree(email, user.ID); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Image != nil {
		user.Image = *input.Image
	}
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.users.Update(user, input.Roles); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.Get(id)
}

// Delete removes a user and everything owned by it.
func (s *UserService) Delete(id uint64) error {
	if err := s.users.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Authenticate returns the user when the credentials match. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(id uint64, oldPassword, newPassword string) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	if !VerifyPassword(oldPassword, user.Password) {
		return ErrWrongPassword
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}

	_, err = s.Patch(id, PatchUserInput{Password: &newPassword})
	return err
}

// ResetPassword sets a new password for the account behind email.
// The caller is responsible for proving ownership of the address first.
func (s *UserService) ResetPassword(email, newPassword string) error {
	user, err := s.GetByEmail(email)
	if err != nil {
		return err
	}

	_, err = s.Patch(user.ID, PatchUserInput{Password: &newPassword})
	return err
}

// ProfileInput holds the self-service profile fields.
type ProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Image     *string
}

// UpdateProfile lets a user edit their own name, email and avatar.
func (s *UserService) UpdateProfile(id uint64, input ProfileInput) (*models.User, error) {
	return s.Patch(id, PatchUserInput{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Image:     input.Image,
	})
}

// EnsureRole grants the role with the given slug to the user with the given email.
func (s *UserService) EnsureRole(email, slug string) error {
	user, err := s.GetByEmail(email)
	if err != nil {
		return err
	}

	role, err := s.roles.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to find role: %w", err)
	}

	if user.HasRole(slug) {
		return nil
	}

	if err := s.users.AddRole(user.ID, role.ID); err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

func (s *UserService) ensureEmailFree(email string, excludeID uint64) error {
	taken, err := s.users.EmailTaken(email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
