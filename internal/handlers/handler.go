package handlers

import (
	"context"

	"github.com/projectbuddy/projectbuddy/internal/services"
)

// Services bundles the domain services the HTTP layer calls into.
type Services struct {
	Users         *services.UserService
	Connections   *services.ConnectionService
	Teams         *services.TeamService
	Projects      *services.ProjectService
	Posts         *services.PostService
	Notifications *services.NotificationService
	Messages      *services.MessageService
}

// Pinger reports database reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CookieConfig controls the session cookie set on login.
type CookieConfig struct {
	Domain string
	Secure bool
}

type Handler struct {
	Services

	hub    *Hub
	db     Pinger
	cookie CookieConfig
}

func New(svc Services, hub *Hub, db Pinger, cookie CookieConfig) *Handler {
	return &Handler{Services: svc, hub: hub, db: db, cookie: cookie}
}
