package models

import "time"

type Message struct {
	Base

	SenderID   string     `gorm:"type:uuid;not null;index" json:"senderId"`
	ReceiverID string     `gorm:"type:uuid;not null;index" json:"receiverId"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	ReadAt     *time.Time `json:"readAt,omitempty"`

	Sender   *User `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Conversation summarizes the latest exchange with one counterpart.
type Conversation struct {
	UserID      string    `json:"userId"`
	LastMessage Message   `json:"lastMessage"`
	UnreadCount int64     `json:"unreadCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
