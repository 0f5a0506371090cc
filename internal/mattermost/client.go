// Package mattermost provides webhook client for sending notifications to Mattermost.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/civicsync/civic-dashboard/internal/config"
	"github.com/civicsync/civic-dashboard/internal/metrics"
	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/internal/notify"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

const botUsername = "Civic Dashboard"

// Attachment colors per notification variant.
const (
	colorDefault     = "#2e7d32"
	colorDestructive = "#d32f2f"
)

// Client handles Mattermost webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.MattermostConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage sends a message to Mattermost.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Mattermost is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = botUsername
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordNotificationFailed("mattermost")
		return fmt.Errorf("failed to send message to Mattermost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordNotificationFailed("mattermost")
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent message to Mattermost")

	return nil
}

// Notify posts a workflow notification as a colored attachment.
func (c *Client) Notify(ctx context.Context, n notify.Notification) error {
	color := colorDefault
	if n.Variant == notify.VariantDestructive {
		color = colorDestructive
	}

	err := c.SendMessage(ctx, &Message{
		Attachments: []Attachment{{
			Fallback: n.Title + ": " + n.Description,
			Color:    color,
			Title:    n.Title,
			Text:     n.Description,
		}},
	})
	if err == nil && c.enabled {
		metrics.RecordNotificationSent("mattermost", string(n.Variant))
	}
	return err
}

// SendPendingDigest posts the list of issues still waiting for triage.
func (c *Client) SendPendingDigest(ctx context.Context, issues []models.Issue, now time.Time) error {
	if len(issues) == 0 {
		c.log.Debug().Msg("No stale pending issues, skipping digest")
		return nil
	}

	text := fmt.Sprintf("### 📋 Pending Issues Digest\n\nThere are **%d** issues waiting for triage:\n\n", len(issues))

	for _, issue := range issues {
		age := now.Sub(issue.ReportedAt)
		ageStr := fmt.Sprintf("%.1f hours", age.Hours())
		if age.Hours() > 24 {
			ageStr = fmt.Sprintf("%.1f days", age.Hours()/24)
		}

		// Flag issues the community is pushing for
		icon := "•"
		if issue.Votes >= 20 {
			icon = "⚠️"
		}

		location := ""
		if issue.Location != "" {
			location = " at " + issue.Location
		}

		text += fmt.Sprintf("%s **%s** (%s%s) %d votes, %s old\n", icon, issue.Title, issue.Category, location, issue.Votes, ageStr)
	}

	text += "\n_Please assign these issues to a department._"

	return c.SendMessage(ctx, &Message{Text: text})
}
