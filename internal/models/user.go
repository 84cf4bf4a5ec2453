package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type User struct {
	Base

	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"not null" json:"name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Headline     string         `json:"headline"`
	Bio          string         `json:"bio"`
	Location     string         `gorm:"index" json:"location"`
	AvatarURL    string         `json:"avatarUrl"`
	Skills       pq.StringArray `gorm:"type:text[]" json:"skills"`
	Interests    pq.StringArray `gorm:"type:text[]" json:"interests"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserSummary is the public projection embedded in other resources.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Headline  string `json:"headline"`
	AvatarURL string `json:"avatarUrl"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Headline:  u.Headline,
		AvatarURL: u.AvatarURL,
	}
}
