package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/project-todo-api/internal/constants"
	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/notification"
	"gorm.io/gorm"
)

const (
	registrationSubject  = "Confirm your email"
	passwordResetSubject = "Password reset code"
)

// AuthService combines credentials, tokens and one-time codes into the
// account flows exposed under /auth.
type AuthService struct {
	users    *UserService
	tokens   *TokenService
	otps     *OTPService
	notifier notification.Gateway
	log      *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users *UserService,
	tokens *TokenService,
	otps *OTPService,
	notifier notification.Gateway,
	log *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		otps:     otps,
		notifier: notifier,
		log:      log,
	}
}

// RegisterInput represents the fields accepted on sign-up.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an account with the default user role.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	var roles []uint64
	role, err := s.users.roles.FindBySlug(constants.RoleUser)
	switch {
	case err == nil:
		roles = append(roles, role.ID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to find default role: %w", err)
	}

	return s.users.Create(CreateUserInput{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Roles:     roles,
	})
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	User   *models.User
	Tokens *TokenPair
}

// Login checks credentials and issues an access/refresh pair.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	user, err := s.users.Authenticate(email, password)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Tokens: pair}, nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (s *AuthService) RefreshToken(refreshToken string) (string, error) {
	return s.tokens.Refresh(refreshToken)
}

// SendRegistrationOTP mails a code to an address that has no account yet.
func (s *AuthService) SendRegistrationOTP(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	return s.sendOTP(ctx, email, registrationSubject)
}

// SendPasswordResetOTP mails a code to the owner of an existing account.
func (s *AuthService) SendPasswordResetOTP(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(email); err != nil {
		return err
	}

	return s.sendOTP(ctx, email, passwordResetSubject)
}

// CheckOTP consumes a code.
func (s *AuthService) CheckOTP(email string, code int) error {
	return s.otps.Consume(email, code)
}

// ResetPassword consumes the code and then sets the new password.
// The password is validated first so a rejected one leaves the code usable.
func (s *AuthService) ResetPassword(email string, code int, newPassword string) error {
	if _, err := s.users.GetByEmail(email); err != nil {
		return err
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if err := s.otps.Consume(email, code); err != nil {
		return err
	}
	return s.users.ResetPassword(email, newPassword)
}

// ChangePassword replaces the password of a signed-in user.
func (s *AuthService) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	return s.users.ChangePassword(userID, oldPassword, newPassword)
}

func (s *AuthService) sendOTP(ctx context.Context, email, subject string) error {
	code, err := s.otps.Issue(email)
	if err != nil {
		return err
	}

	body, err := notification.OTPBody(code, s.otps.TTL())
	if err != nil {
		return fmt.Errorf("failed to render code: %w", err)
	}

	if err := s.notifier.Send(ctx, []string{normalizeEmail(email)}, subject, body); err != nil {
		s.log.Warn("verification code not delivered", "error", err)
		return ErrDeliveryFailed
	}
	return nil
}
