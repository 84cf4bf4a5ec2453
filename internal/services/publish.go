package services

import (
	"context"

	"github.com/projectbuddy/projectbuddy/internal/events"
	"github.com/projectbuddy/projectbuddy/internal/logger"
)

// Publisher hands domain events to the notification pipeline.
type Publisher interface {
	Publish(ctx context.Context, events ...events.Event) error
}

// publish drops the actor from each event's recipients and sends whatever
// is left. Failures are logged; the request that caused the event has
// already succeeded.
func publish(ctx context.Context, pub Publisher, evts ...events.Event) {
	if pub == nil {
		return
	}

	out := make([]events.Event, 0, len(evts))
	for _, event := range evts {
		recipients := make([]string, 0, len(event.Recipients))
		seen := make(map[string]struct{}, len(event.Recipients))

		for _, id := range event.Recipients {
			if id == "" || id == event.ActorID {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			recipients = append(recipients, id)
		}

		if len(recipients) == 0 {
			continue
		}

		event.Recipients = recipients
		out = append(out, event)
	}

	if len(out) == 0 {
		return
	}

	if err := pub.Publish(ctx, out...); err != nil {
		logger.Log.WithError(err).WithField("events", len(out)).Warn("failed to publish events")
	}
}
