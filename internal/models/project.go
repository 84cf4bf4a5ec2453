package models

import "github.com/lib/pq"

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

type ProjectRole string

const (
	ProjectOwner  ProjectRole = "OWNER"
	ProjectAdmin  ProjectRole = "ADMIN"
	ProjectMember ProjectRole = "MEMBER"
)

type Project struct {
	Base

	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	OwnerID     string         `gorm:"type:uuid;not null;index" json:"ownerId"`
	TeamID      *string        `gorm:"type:uuid;index" json:"teamId,omitempty"`
	Status      ProjectStatus  `gorm:"type:varchar(16);not null;index" json:"status"`
	IsPublic    bool           `gorm:"not null" json:"isPublic"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`

	// Relationships
	Owner   *User               `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"owner,omitempty"`
	Team    *Team               `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Members []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"members,omitempty"`
}
