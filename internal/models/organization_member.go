package models

import "time"

// OrganizationMember records that a user belongs to an organization.
// The pair is the whole fact; there is no role or other payload.
type OrganizationMember struct {
	OrganizationID uint64    `gorm:"primarykey;autoIncrement:false" json:"organization_id"`
	UserID         uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	JoinedAt       time.Time `json:"joined_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
