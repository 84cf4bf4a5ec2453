package services

import (
	"context"
	"testing"
	"time"

	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/auth"
	"github.com/projectbuddy/projectbuddy/internal/authz"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/stretchr/testify/require"
)

type harness struct {
	db        *memDB
	publisher *recordingPublisher

	users         *UserService
	connections   *ConnectionService
	teams         *TeamService
	projects      *ProjectService
	posts         *PostService
	notifications *NotificationService
	messages      *MessageService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := newMemDB()
	pub := &recordingPublisher{}
	policy := authz.MustPolicy()

	users := fakeUsers{db}
	connections := fakeConnections{db}
	teams := fakeTeams{db}
	projects := fakeProjects{db}

	h := &harness{
		db:            db,
		publisher:     pub,
		users:         NewUserService(users, auth.NewTokenIssuer("test-secret", time.Hour)),
		connections:   NewConnectionService(connections, users, pub),
		teams:         NewTeamService(teams, users, policy, pub),
		projects:      NewProjectService(projects, teams, users, policy, pub),
		posts:         NewPostService(fakePosts{db}, fakeInteractions{db}, fakeGraph{db}, teams, projects, pub),
		notifications: NewNotificationService(fakeNotifications{db}, teams, nil, nil),
		messages:      NewMessageService(fakeMessages{db}, connections, pub),
	}

	h.posts.now = func() time.Time { return db.clock }

	return h
}

// user inserts an account directly, skipping password hashing.
func (h *harness) user(t *testing.T, name string, skills ...string) *models.User {
	t.Helper()

	u := &models.User{Name: name, Email: name + "@example.com", Skills: skills}
	require.NoError(t, fakeUsers{h.db}.Create(context.Background(), u))
	return u
}

// connect drives a request from a to b through to ACCEPTED.
func (h *harness) connect(t *testing.T, a, b *models.User) {
	t.Helper()

	ctx := context.Background()
	conn, err := h.connections.Send(ctx, a.ID, b.ID, "")
	require.NoError(t, err)

	_, err = h.connections.Respond(ctx, b.ID, conn.ID, ActionAccept)
	require.NoError(t, err)
}

func (h *harness) team(t *testing.T, owner *models.User, mutate func(*TeamInput)) *models.Team {
	t.Helper()

	name := owner.Name + "'s team"
	in := TeamInput{Name: &name}
	if mutate != nil {
		mutate(&in)
	}

	team, err := h.teams.Create(context.Background(), owner.ID, in)
	require.NoError(t, err)
	return team
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()

	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func ptr[T any](v T) *T {
	return &v
}
