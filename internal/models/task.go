package models

import "time"

type TaskStatus struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"type:varchar(256);not null" json:"title"`
	Slug      string    `gorm:"type:varchar(256);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TaskStatus) TableName() string {
	return "task_statuses"
}

type Priority struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"type:varchar(256);not null" json:"title"`
	Slug      string    `gorm:"type:varchar(256);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Priority) TableName() string {
	return "priorities"
}

type Task struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(256);not null" json:"title"`
	Text        string    `gorm:"type:text" json:"text"`
	Deadline    time.Time `gorm:"not null;index" json:"deadline"`
	ProjectID   uint64    `gorm:"not null;index" json:"project_id"`
	PerformerID uint64    `gorm:"not null;index" json:"performer_id"`
	StatusID    uint64    `gorm:"not null;index" json:"status_id"`
	PriorityID  uint64    `gorm:"not null;index" json:"priority_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Performer User       `gorm:"foreignKey:PerformerID;constraint:OnDelete:CASCADE" json:"performer"`
	Status    TaskStatus `gorm:"foreignKey:StatusID" json:"status"`
	Priority  Priority   `gorm:"foreignKey:PriorityID" json:"priority"`
}
