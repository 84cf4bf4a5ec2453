package models

type ProjectMembership struct {
	Base

	UserID    string      `gorm:"type:uuid;not null;uniqueIndex:idx_user_project" json:"userId"`
	ProjectID string      `gorm:"type:uuid;not null;uniqueIndex:idx_user_project" json:"projectId"`
	Role      ProjectRole `gorm:"type:varchar(16);not null" json:"role"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
}
