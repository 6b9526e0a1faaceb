package models

import "time"

// OTP holds the single outstanding one-time code for an email address.
type OTP struct {
	ID        uint64    `gorm:"primarykey"`
	Email     string    `gorm:"type:varchar(320);uniqueIndex;not null"`
	Code      int       `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OTP) TableName() string {
	return "otps"
}
