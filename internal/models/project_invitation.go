package models

import "time"

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// ProjectInvitation moves from pending to accepted or declined exactly once.
type ProjectInvitation struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	ProjectID uint64           `gorm:"not null;index" json:"project_id"`
	InvitedID uint64           `gorm:"not null;index" json:"invited_id"`
	InviterID uint64           `gorm:"not null;index" json:"inviter_id"`
	Status    InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project"`
	Invited User    `gorm:"foreignKey:InvitedID;constraint:OnDelete:CASCADE" json:"invited"`
	Inviter User    `gorm:"foreignKey:InviterID;constraint:OnDelete:CASCADE" json:"inviter"`
}

func (ProjectInvitation) TableName() string {
	return "projectinvitations"
}

func (i ProjectInvitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}
