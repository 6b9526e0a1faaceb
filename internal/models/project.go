package models

import "time"

type Project struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"type:varchar(256);not null" json:"title"`
	OwnerID   uint64    `gorm:"not null;index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner              User   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner"`
	ParticipatingUsers []User `gorm:"many2many:project_participants;joinForeignKey:ProjectID;joinReferences:UserID" json:"participating_users"`
	Tasks              []Task `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks"`
}

// HasParticipant reports whether userID is among the loaded participants.
func (p Project) HasParticipant(userID uint64) bool {
	for _, u := range p.ParticipatingUsers {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// ProjectParticipant is a row of the project membership join table.
type ProjectParticipant struct {
	ProjectID uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"primaryKey"`
}

func (ProjectParticipant) TableName() string {
	return "project_participants"
}
