package services

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/projectbuddy/projectbuddy/internal/events"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"gorm.io/datatypes"
)

// Pusher delivers a stored notification to the recipient's live sessions.
type Pusher interface {
	Push(userID string, notification *models.Notification)
}

// TeamNotifier forwards team activity to external integrations.
type TeamNotifier interface {
	SendTeamPost(ctx context.Context, team *models.Team, post TeamPost) error
}

type NotificationService struct {
	notifications NotificationStore
	teams         TeamStore
	pusher        Pusher
	integrations  TeamNotifier
}

func NewNotificationService(notifications NotificationStore, teams TeamStore, pusher Pusher, integrations TeamNotifier) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		teams:         teams,
		pusher:        pusher,
		integrations:  integrations,
	}
}

// Deliver is the event bus handler: it stores one notification per
// recipient, pushes them to connected clients and, for team posts, calls the
// team's webhooks.
func (s *NotificationService) Deliver(ctx context.Context, event events.Event) error {
	var data datatypes.JSON
	if len(event.Data) > 0 {
		raw, err := json.Marshal(event.Data)
		if err != nil {
			return err
		}
		data = datatypes.JSON(raw)
	}

	var actorID *string
	if event.ActorID != "" {
		actor := event.ActorID
		actorID = &actor
	}

	batch := make([]*models.Notification, 0, len(event.Recipients))
	for _, recipient := range event.Recipients {
		batch = append(batch, &models.Notification{
			UserID:   recipient,
			ActorID:  actorID,
			Type:     event.Type,
			Message:  event.Message,
			EntityID: event.EntityID,
			Data:     data,
		})
	}

	if err := s.notifications.CreateBatch(ctx, batch); err != nil {
		return err
	}

	if s.pusher != nil {
		for _, n := range batch {
			s.pusher.Push(n.UserID, n)
		}
	}

	if event.Type == models.NotifyTeamPost && event.TeamID != "" {
		s.forwardTeamPost(ctx, event)
	}

	return nil
}

func (s *NotificationService) forwardTeamPost(ctx context.Context, event events.Event) {
	if s.integrations == nil {
		return
	}

	log := logger.Log.WithField("team_id", event.TeamID)

	team, err := s.teams.FindByID(ctx, event.TeamID)
	if err != nil {
		log.WithError(err).Warn("failed to load team for webhooks")
		return
	}

	if team.DiscordWebhook == "" && team.SlackWebhook == "" {
		return
	}

	post := TeamPost{PostID: event.EntityID}
	if v, ok := event.Data["author"].(string); ok {
		post.Author = v
	}
	if v, ok := event.Data["type"].(string); ok {
		post.Type = v
	}
	if v, ok := event.Data["preview"].(string); ok {
		post.Preview = v
	}

	if err := s.integrations.SendTeamPost(ctx, team, post); err != nil {
		log.WithError(err).Warn("failed to deliver team webhook")
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page feed.Page) ([]models.Notification, int64, error) {
	return s.notifications.List(ctx, userID, unreadOnly, page)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifications.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	return s.notifications.Delete(ctx, userID, id)
}
