package repository

import (
	"github.com/yukikurage/project-todo-api/internal/models"
	"gorm.io/gorm"
)

// GormOTPRepository is a GORM implementation of OTPRepository
type GormOTPRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTPRepository
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &GormOTPRepository{db: db}
}

// Replace deletes any code held for the email and stores the new one
func (r *GormOTPRepository) Replace(otp *models.OTP) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", otp.Email).Delete(&models.OTP{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
}

// Find finds the record matching both email and code
func (r *GormOTPRepository) Find(email string, code int) (*models.OTP, error) {
	var otp models.OTP
	if err := r.db.Where("email = ? AND code = ?", email, code).First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

// Delete removes a record by ID and reports whether this call removed it
func (r *GormOTPRepository) Delete(id uint64) (bool, error) {
	result := r.db.Delete(&models.OTP{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
