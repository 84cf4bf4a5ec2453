// Package events is the in-process event bus that carries notification
// fan-out out of the request path.
package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/projectbuddy/projectbuddy/internal/models"
)

const (
	TopicNotifications = "notifications"

	outputBuffer = 256
)

// Event is something that happened to Recipients because of Actor.
type Event struct {
	Type       models.NotificationType `json:"type"`
	ActorID    string                  `json:"actorId"`
	Recipients []string                `json:"recipients"`
	EntityID   string                  `json:"entityId"`
	TeamID     string                  `json:"teamId,omitempty"`
	Message    string                  `json:"message"`
	Data       map[string]interface{}  `json:"data,omitempty"`
}

// Handler processes one decoded event. A returned error is logged; the event
// is not redelivered.
type Handler func(ctx context.Context, event Event) error

type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: outputBuffer},
			newLogrusAdapter(),
		),
	}
}

// Publish never blocks on consumers; events published while nobody
// consumes are dropped.
func (b *Bus) Publish(_ context.Context, events ...Event) error {
	msgs := make([]*message.Message, 0, len(events))

	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return errors.Wrap(err, "marshal event")
		}

		msgs = append(msgs, message.NewMessage(watermill.NewUUID(), payload))
	}

	return b.pubsub.Publish(TopicNotifications, msgs...)
}

// Consume delivers events to handler until ctx is cancelled or the bus is
// closed. Malformed payloads are acked and dropped.
func (b *Bus) Consume(ctx context.Context, handler Handler) error {
	messages, err := b.pubsub.Subscribe(ctx, TopicNotifications)
	if err != nil {
		return errors.Wrap(err, "subscribe to notifications")
	}

	for msg := range messages {
		var event Event
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			logger.Log.WithError(err).WithField("message_uuid", msg.UUID).Warn("dropping malformed event")
			msg.Ack()
			continue
		}

		if err := handler(ctx, event); err != nil {
			logger.Log.WithError(err).WithField("event_type", event.Type).Error("failed to handle event")
		}

		msg.Ack()
	}

	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
