package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-todo-api/internal/models"
	"github.com/yukikurage/project-todo-api/internal/repository"
	"github.com/yukikurage/project-todo-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOTPInvalid = errors.New("invalid verification code")
	ErrOTPExpired = errors.New("verification code expired")
)

// OTPService issues single-use codes bound to an email address.
type OTPService struct {
	repo repository.OTPRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewOTPService creates a new OTPService. Codes older than ttl are rejected.
func NewOTPService(repo repository.OTPRepository, ttl time.Duration) *OTPService {
	return &OTPService{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// TTL is how long an issued code stays valid.
func (s *OTPService) TTL() time.Duration {
	return s.ttl
}

// Issue stores a fresh code for the email, replacing any earlier one.
func (s *OTPService) Issue(email string) (int, error) {
	code, err := utils.GenerateOTPCode()
	if err != nil {
		return 0, err
	}

	otp := &models.OTP{
		Email:     normalizeEmail(email),
		Code:      code,
		CreatedAt: s.now(),
	}
	if err := s.repo.Replace(otp); err != nil {
		return 0, fmt.Errorf("failed to store code: %w", err)
	}

	return code, nil
}

// Consume checks the code exactly once. A matching record is deleted whatever the outcome.
func (s *OTPService) Consume(email string, code int) error {
	otp, err := s.repo.Find(normalizeEmail(email), code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPInvalid
		}
		return fmt.Errorf("failed to find code: %w", err)
	}

	deleted, err := s.repo.Delete(otp.ID)
	if err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}
	if !deleted {
		// Consumed concurrently by another request.
		return ErrOTPInvalid
	}

	if s.now().Sub(otp.CreatedAt) > s.ttl {
		return ErrOTPExpired
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
