package services

import (
	"context"
	"strings"

	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/events"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
)

const maxMessageLength = 5000

type MessageService struct {
	messages    MessageStore
	connections ConnectionStore
	publisher   Publisher
}

func NewMessageService(messages MessageStore, connections ConnectionStore, publisher Publisher) *MessageService {
	return &MessageService{messages: messages, connections: connections, publisher: publisher}
}

// Send delivers a direct message. Only users with an ACCEPTED connection may
// message each other.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)

	switch {
	case receiverID == "":
		return nil, apperr.Validation("Receiver is required")
	case senderID == receiverID:
		return nil, apperr.Validation("You cannot message yourself")
	case content == "":
		return nil, apperr.Validation("Message content is required")
	case len(content) > maxMessageLength:
		return nil, apperr.Validation("Message is too long")
	}

	conn, err := s.connections.FindBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	if conn == nil || conn.Status != models.ConnectionAccepted {
		return nil, apperr.Forbidden("You can only message your connections")
	}

	msg := &models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyMessage,
		ActorID:    senderID,
		Recipients: []string{receiverID},
		EntityID:   msg.ID,
		Message:    "You have a new message",
		Data:       map[string]interface{}{"preview": preview(content)},
	})

	return msg, nil
}

func (s *MessageService) Conversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	return s.messages.Conversations(ctx, userID)
}

func (s *MessageService) Thread(ctx context.Context, userID, otherID string, page feed.Page) ([]models.Message, int64, error) {
	if userID == otherID {
		return nil, 0, apperr.Validation("You cannot message yourself")
	}

	return s.messages.Thread(ctx, userID, otherID, page)
}

// MarkRead marks every message otherID sent to userID as read.
func (s *MessageService) MarkRead(ctx context.Context, userID, otherID string) (int64, error) {
	return s.messages.MarkThreadRead(ctx, userID, otherID)
}
