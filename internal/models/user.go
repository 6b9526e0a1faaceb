package models

import (
	"strings"
	"time"
)

type User struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"type:varchar(320);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	FirstName string    `gorm:"type:varchar(255);not null;default:''" json:"first_name"`
	LastName  string    `gorm:"type:varchar(255);not null;default:''" json:"last_name"`
	Image     string    `gorm:"type:varchar(512);not null;default:''" json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Roles []Role `gorm:"many2many:association_table;joinForeignKey:UsersID;joinReferences:RolesID" json:"roles"`
}

// FullName joins first and last name the way notifications address people.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasRole reports whether a role with the given slug is loaded on the user.
func (u User) HasRole(slug string) bool {
	for _, r := range u.Roles {
		if r.Slug == slug {
			return true
		}
	}
	return false
}

// UserRole is a row of the user-role join table.
type UserRole struct {
	UsersID uint64 `gorm:"primaryKey"`
	RolesID uint64 `gorm:"primaryKey"`
}

func (UserRole) TableName() string {
	return "association_table"
}
