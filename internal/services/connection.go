package services

import (
	"context"
	"strings"

	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/events"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/projectbuddy/projectbuddy/internal/repository"
)

const defaultSuggestionLimit = 10

type ConnectionAction string

const (
	ActionAccept  ConnectionAction = "accept"
	ActionDecline ConnectionAction = "decline"
	ActionBlock   ConnectionAction = "block"
)

var actionStatus = map[ConnectionAction]models.ConnectionStatus{
	ActionAccept:  models.ConnectionAccepted,
	ActionDecline: models.ConnectionDeclined,
	ActionBlock:   models.ConnectionBlocked,
}

// ConnectionState describes the relation between the caller and another
// user. Status is "NONE" when there is no connection row.
type ConnectionState struct {
	Status       string `json:"status"`
	Direction    string `json:"direction,omitempty"`
	ConnectionID string `json:"connectionId,omitempty"`
}

type ConnectionService struct {
	connections ConnectionStore
	users       UserStore
	publisher   Publisher
}

func NewConnectionService(connections ConnectionStore, users UserStore, publisher Publisher) *ConnectionService {
	return &ConnectionService{connections: connections, users: users, publisher: publisher}
}

// Send creates a PENDING request from sender to receiver. Any existing row
// between the two, in either direction, blocks a new one.
func (s *ConnectionService) Send(ctx context.Context, senderID, receiverID, message string) (*models.Connection, error) {
	if receiverID == "" {
		return nil, apperr.Validation("Receiver is required")
	}

	if senderID == receiverID {
		return nil, apperr.Validation("You cannot connect with yourself")
	}

	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		return nil, err
	}

	existing, err := s.connections.FindBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, existingConnectionError(existing)
	}

	conn := &models.Connection{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.ConnectionPending,
		Message:    strings.TrimSpace(message),
	}

	if err := s.connections.Create(ctx, conn); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("A connection already exists between these users")
		}
		return nil, err
	}

	publish(ctx, s.publisher, events.Event{
		Type:       models.NotifyConnectionRequest,
		ActorID:    senderID,
		Recipients: []string{receiverID},
		EntityID:   conn.ID,
		Message:    "You have a new connection request",
	})

	return conn, nil
}

func existingConnectionError(conn *models.Connection) error {
	switch conn.Status {
	case models.ConnectionAccepted:
		return apperr.Conflict("You are already connected with this user")
	case models.ConnectionPending:
		return apperr.Conflict("A connection request is already pending between these users")
	case models.ConnectionBlocked:
		return apperr.Forbidden("You cannot send a connection request to this user")
	default:
		return apperr.Conflict("A connection already exists between these users")
	}
}

// Respond moves a PENDING request to ACCEPTED, DECLINED or BLOCKED. Only the
// receiver may respond.
func (s *ConnectionService) Respond(ctx context.Context, userID, connectionID string, action ConnectionAction) (*models.Connection, error) {
	next, ok := actionStatus[action]
	if !ok {
		return nil, apperr.Validation("Action must be one of accept, decline or block")
	}

	conn, err := s.connections.FindByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if conn.ReceiverID != userID {
		if conn.SenderID == userID {
			return nil, apperr.Forbidden("Only the receiver can respond to a connection request")
		}
		return nil, apperr.NotFound("Connection not found")
	}

	if conn.Status != models.ConnectionPending {
		return nil, apperr.Conflict("Connection request has already been responded to")
	}

	if err := s.connections.Transition(ctx, conn.ID, models.ConnectionPending, next); err != nil {
		return nil, err
	}
	conn.Status = next

	if next == models.ConnectionAccepted {
		publish(ctx, s.publisher, events.Event{
			Type:       models.NotifyConnectionAccepted,
			ActorID:    userID,
			Recipients: []string{conn.SenderID},
			EntityID:   conn.ID,
			Message:    "Your connection request was accepted",
		})
	}

	return conn, nil
}

// Delete removes a connection in any state. Either party may delete it.
func (s *ConnectionService) Delete(ctx context.Context, userID, connectionID string) error {
	conn, err := s.connections.FindByID(ctx, connectionID)
	if err != nil {
		return err
	}

	if !conn.Involves(userID) {
		return apperr.Forbidden("You can only remove your own connections")
	}

	return s.connections.Delete(ctx, conn.ID)
}

func (s *ConnectionService) List(ctx context.Context, userID string, query repository.ConnectionQuery, page feed.Page) ([]models.Connection, int64, error) {
	return s.connections.List(ctx, userID, query, page)
}

func (s *ConnectionService) Status(ctx context.Context, userID, otherID string) (ConnectionState, error) {
	conn, err := s.connections.FindBetween(ctx, userID, otherID)
	if err != nil {
		return ConnectionState{}, err
	}

	if conn == nil {
		return ConnectionState{Status: "NONE"}, nil
	}

	direction := "received"
	if conn.SenderID == userID {
		direction = "sent"
	}

	return ConnectionState{
		Status:       string(conn.Status),
		Direction:    direction,
		ConnectionID: conn.ID,
	}, nil
}

// Suggestions lists users sharing a skill or interest with userID that have
// no connection row with them in any state.
func (s *ConnectionService) Suggestions(ctx context.Context, userID string, limit int) ([]models.User, error) {
	if limit < 1 || limit > feed.MaxLimit {
		limit = defaultSuggestionLimit
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	related, err := s.connections.RelatedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	exclude := append(related, userID)

	return s.users.Suggestions(ctx, user.Skills, user.Interests, exclude, limit)
}
