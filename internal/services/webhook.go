package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/projectbuddy/projectbuddy/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorBlue = 3447003 // #3498DB

	WebhookUsername = "ProjectBuddy"
)

// TeamPost is what a team integration is told about a new post.
type TeamPost struct {
	PostID  string
	Author  string
	Type    string
	Preview string
}

// WebhookNotifier posts team activity to the Discord and Slack webhooks a
// team has configured.
type WebhookNotifier struct {
	client *http.Client
	now    func() time.Time
}

func NewWebhookNotifier(timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// SendTeamPost delivers to every configured webhook. The first failure is
// returned after all deliveries were attempted.
func (w *WebhookNotifier) SendTeamPost(ctx context.Context, team *models.Team, post TeamPost) error {
	var firstErr error

	if team.DiscordWebhook != "" {
		if err := w.sendDiscordTeamPost(ctx, team, post); err != nil {
			firstErr = fmt.Errorf("discord: %w", err)
		}
	}

	if team.SlackWebhook != "" {
		if err := w.sendSlackTeamPost(ctx, team, post); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("slack: %w", err)
		}
	}

	return firstErr
}

func (w *WebhookNotifier) sendDiscordTeamPost(ctx context.Context, team *models.Team, post TeamPost) error {
	payload := DiscordWebhookRequest{
		Username: WebhookUsername,
		Embeds: []DiscordEmbed{
			{
				Title:       fmt.Sprintf("New post in **%s**", team.Name),
				Description: post.Preview,
				Color:       ColorBlue,
				Fields: []DiscordWebhookField{
					{Name: "Author", Value: post.Author, Inline: true},
					{Name: "Type", Value: post.Type, Inline: true},
				},
				Footer: &DiscordFooter{
					Text: fmt.Sprintf("Team: %s | Post %s", team.Name, post.PostID),
				},
				Timestamp: w.now().Format(time.RFC3339),
			},
		},
	}

	return w.post(ctx, team.DiscordWebhook, payload)
}

func (w *WebhookNotifier) sendSlackTeamPost(ctx context.Context, team *models.Team, post TeamPost) error {
	payload := SlackWebhookRequest{
		Username: WebhookUsername,
		Text:     fmt.Sprintf("*New post in %s*", team.Name),
		Attachments: []SlackAttachment{
			{
				Color: "#3498DB",
				Title: fmt.Sprintf("%s shared an update", post.Author),
				Text:  post.Preview,
				Fields: []SlackField{
					{Title: "Author", Value: post.Author, Short: true},
					{Title: "Type", Value: post.Type, Short: true},
				},
				Footer:    fmt.Sprintf("Team: %s", team.Name),
				Timestamp: w.now().Unix(),
			},
		},
	}

	return w.post(ctx, team.SlackWebhook, payload)
}

func (w *WebhookNotifier) post(ctx context.Context, webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
