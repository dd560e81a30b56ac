package models

import (
	"time"

	"gorm.io/gorm"
)

type Organization struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(255);index;not null" json:"name"`
	Type       string         `gorm:"type:varchar(50);not null" json:"type"`
	CreatorID  uint64         `gorm:"not null;index" json:"creator_id"`
	InviteCode string         `gorm:"type:varchar(16);not null" json:"invite_code"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Tasks   []Task               `gorm:"foreignKey:OrganizationID" json:"tasks,omitempty"`
}

// IsDeleted reports whether the organization has been soft deleted.
func (o *Organization) IsDeleted() bool {
	return o.DeletedAt.Valid
}
