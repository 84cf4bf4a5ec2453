package models

import "gorm.io/datatypes"

type TeamVisibility string

const (
	TeamPublic     TeamVisibility = "PUBLIC"
	TeamPrivate    TeamVisibility = "PRIVATE"
	TeamInviteOnly TeamVisibility = "INVITE_ONLY"
)

type MemberStatus string

const (
	MemberAdmin     MemberStatus = "ADMIN"
	MemberModerator MemberStatus = "MODERATOR"
	MemberMember    MemberStatus = "MEMBER"
)

func (s MemberStatus) Valid() bool {
	return s == MemberAdmin || s == MemberModerator || s == MemberMember
}

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDING"
	JoinRequestApproved JoinRequestStatus = "APPROVED"
	JoinRequestRejected JoinRequestStatus = "REJECTED"
)

type Team struct {
	Base

	Name              string         `gorm:"not null" json:"name"`
	Description       string         `json:"description"`
	OwnerID           string         `gorm:"type:uuid;not null;index" json:"ownerId"`
	Visibility        TeamVisibility `gorm:"type:varchar(16);not null;index" json:"visibility"`
	AllowJoinRequests bool           `gorm:"not null" json:"allowJoinRequests"`
	IsRecruiting      bool           `gorm:"not null" json:"isRecruiting"`
	MaxMembers        int            `gorm:"not null" json:"maxMembers"`
	DiscordWebhook    string         `json:"discordWebhook,omitempty"`
	SlackWebhook      string         `json:"slackWebhook,omitempty"`
	Settings          datatypes.JSON `json:"settings,omitempty"`

	MemberCount int64 `gorm:"-" json:"memberCount"`

	// Relationships
	Owner   *User        `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"owner,omitempty"`
	Members []TeamMember `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"members,omitempty"`
}

type TeamMember struct {
	Base

	TeamID string       `gorm:"type:uuid;not null;uniqueIndex:idx_team_member" json:"teamId"`
	UserID string       `gorm:"type:uuid;not null;uniqueIndex:idx_team_member;index" json:"userId"`
	Status MemberStatus `gorm:"type:varchar(16);not null" json:"status"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
}

// TeamFollow subscribes a user to a team's posts without membership rights.
type TeamFollow struct {
	Base

	TeamID string `gorm:"type:uuid;not null;uniqueIndex:idx_team_follow" json:"teamId"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_team_follow;index" json:"userId"`

	Team *Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

type TeamJoinRequest struct {
	Base

	TeamID     string            `gorm:"type:uuid;not null;index" json:"teamId"`
	UserID     string            `gorm:"type:uuid;not null;index" json:"userId"`
	Message    string            `json:"message"`
	Status     JoinRequestStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	ReviewedBy *string           `gorm:"type:uuid" json:"reviewedBy,omitempty"`

	Team *Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
}
