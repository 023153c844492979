package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCM publishes to a Firebase Cloud Messaging topic the mobile app
// subscribes to.
type FCM struct {
	client fcmClient
	topic  string
}

var _ Notifier = (*FCM)(nil)

func NewFCM(ctx context.Context, credentialsFile, topic string) (*FCM, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}
	return &FCM{client: client, topic: topic}, nil
}

func (f *FCM) Name() string { return "fcm" }

func (f *FCM) Notify(ctx context.Context, m *Message) error {
	priority := "normal"
	if m.Urgent {
		priority = "high"
	}
	msg := &messaging.Message{
		Topic: f.topic,
		Notification: &messaging.Notification{
			Title: m.Title,
			Body:  m.Body,
		},
		Data: map[string]string{"url": m.URL, "tag": m.Tag},
		Android: &messaging.AndroidConfig{
			Priority:    priority,
			CollapseKey: m.Tag,
		},
	}
	// FCM only accepts https links.
	if strings.HasPrefix(m.URL, "https://") {
		msg.Webpush = &messaging.WebpushConfig{FCMOptions: &messaging.WebpushFCMOptions{Link: m.URL}}
	}
	id, err := f.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send firebase message: %w", err)
	}
	slog.Debug("fcm: message sent", "id", id, "topic", f.topic)
	return nil
}
