package models

import "gorm.io/gorm"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
	ConnectionDeclined ConnectionStatus = "DECLINED"
	ConnectionBlocked  ConnectionStatus = "BLOCKED"
)

// Connection is a directed request between two users. PairKey is the
// normalized unordered pair and is unique, so (A,B) and (B,A) can never both
// exist.
type Connection struct {
	Base

	SenderID   string           `gorm:"type:uuid;not null;index" json:"senderId"`
	ReceiverID string           `gorm:"type:uuid;not null;index" json:"receiverId"`
	Status     ConnectionStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	Message    string           `json:"message"`
	PairKey    string           `gorm:"not null;uniqueIndex" json:"-"`

	// Relationships
	Sender   *User `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"receiver,omitempty"`
}

func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	c.PairKey = PairKey(c.SenderID, c.ReceiverID)
	return c.Base.BeforeCreate(tx)
}

// Other returns the party of the connection that is not userID.
func (c *Connection) Other(userID string) string {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}

func (c *Connection) Involves(userID string) bool {
	return c.SenderID == userID || c.ReceiverID == userID
}

func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
