package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTeamPostDeliversToBothIntegrations(t *testing.T) {
	var mu sync.Mutex
	bodies := map[string][]byte{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mu.Lock()
		bodies[r.URL.Path] = body
		mu.Unlock()

		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	team := &models.Team{Name: "Gophers", DiscordWebhook: server.URL + "/discord", SlackWebhook: server.URL + "/slack"}
	notifier := NewWebhookNotifier(time.Second)

	err := notifier.SendTeamPost(context.Background(), team, TeamPost{PostID: "p1", Author: "Ada", Type: "general", Preview: "hello"})
	require.NoError(t, err)

	var discord DiscordWebhookRequest
	require.NoError(t, json.Unmarshal(bodies["/discord"], &discord))
	require.Len(t, discord.Embeds, 1)
	assert.Equal(t, "hello", discord.Embeds[0].Description)
	assert.Contains(t, discord.Embeds[0].Title, "Gophers")

	var slack SlackWebhookRequest
	require.NoError(t, json.Unmarshal(bodies["/slack"], &slack))
	require.Len(t, slack.Attachments, 1)
	assert.Equal(t, "Ada shared an update", slack.Attachments[0].Title)
}

func TestSendTeamPostReportsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	team := &models.Team{Name: "Gophers", SlackWebhook: server.URL}

	err := NewWebhookNotifier(time.Second).SendTeamPost(context.Background(), team, TeamPost{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack")
}

func TestSendTeamPostWithoutWebhooksIsNoop(t *testing.T) {
	err := NewWebhookNotifier(time.Second).SendTeamPost(context.Background(), &models.Team{}, TeamPost{})
	assert.NoError(t, err)
}
