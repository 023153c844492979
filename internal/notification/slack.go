package notification

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Slack posts through an incoming webhook, or with a bot token to a
// channel when no webhook is configured.
type Slack struct {
	webhookURL string
	api        *slack.Client
	channel    string
}

var _ Notifier = (*Slack)(nil)

func NewSlackWebhook(url string) *Slack {
	return &Slack{webhookURL: url}
}

func NewSlackBot(token, channel string, opts ...slack.Option) *Slack {
	return &Slack{api: slack.New(token, opts...), channel: channel}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Notify(ctx context.Context, m *Message) error {
	text := fmt.Sprintf("*%s*\n%s", m.Title, m.Body)
	if m.URL != "" {
		text += fmt.Sprintf("\n<%s|Open schedule>", m.URL)
	}
	if s.webhookURL != "" {
		if err := slack.PostWebhookContext(ctx, s.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
			return fmt.Errorf("failed to post slack webhook: %w", err)
		}
		return nil
	}
	if _, _, err := s.api.PostMessageContext(ctx, s.channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("failed to post slack message: %w", err)
	}
	return nil
}
