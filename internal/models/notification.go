package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotifyConnectionRequest  NotificationType = "CONNECTION_REQUEST"
	NotifyConnectionAccepted NotificationType = "CONNECTION_ACCEPTED"
	NotifyTeamJoined         NotificationType = "TEAM_JOINED"
	NotifyTeamJoinRequest    NotificationType = "TEAM_JOIN_REQUEST"
	NotifyTeamRequestOutcome NotificationType = "TEAM_JOIN_REQUEST_REVIEWED"
	NotifyTeamInvited        NotificationType = "TEAM_INVITED"
	NotifyTeamRoleChanged    NotificationType = "TEAM_ROLE_CHANGED"
	NotifyProjectMember      NotificationType = "PROJECT_MEMBER_ADDED"
	NotifyPostReaction       NotificationType = "POST_REACTION"
	NotifyPostComment        NotificationType = "POST_COMMENT"
	NotifyPostShare          NotificationType = "POST_SHARE"
	NotifyTeamPost           NotificationType = "TEAM_POST"
	NotifyMessage            NotificationType = "MESSAGE"
)

type Notification struct {
	Base

	UserID   string           `gorm:"type:uuid;not null;index" json:"userId"`
	ActorID  *string          `gorm:"type:uuid" json:"actorId,omitempty"`
	Type     NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Message  string           `json:"message"`
	EntityID string           `json:"entityId"`
	Data     datatypes.JSON   `json:"data,omitempty"`
	Read     bool             `gorm:"not null;index" json:"read"`
	ReadAt   *time.Time       `json:"readAt,omitempty"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
