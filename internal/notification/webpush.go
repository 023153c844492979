package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/weidustudio/studio/internal/config"
	"github.com/weidustudio/studio/internal/pushsubscription"
)

const webPushTTL = 86400

// WebPush sends to every registered browser and forgets subscriptions the
// push service reports as gone.
type WebPush struct {
	env    *config.NotifyEnv
	repo   pushsubscription.Repository
	client webpush.HTTPClient
}

var _ Notifier = (*WebPush)(nil)

func NewWebPush(env *config.NotifyEnv, repo pushsubscription.Repository) *WebPush {
	return &WebPush{env: env, repo: repo, client: http.DefaultClient}
}

// WithHTTPClient replaces the client used to reach push services.
func (s *WebPush) WithHTTPClient(c webpush.HTTPClient) *WebPush {
	s.client = c
	return s
}

func (s *WebPush) Name() string { return "webpush" }

func (s *WebPush) Notify(ctx context.Context, m *Message) error {
	if !s.env.WebPushEnabled() {
		slog.Warn("push notification: VAPID keys not configured, skipping")
		return nil
	}
	subs, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	var errs []error
	for _, sub := range subs {
		if err := s.send(ctx, sub, data, m.Urgent); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *WebPush) send(ctx context.Context, sub *pushsubscription.Subscription, data []byte, urgent bool) error {
	urgency := webpush.UrgencyNormal
	if urgent {
		urgency = webpush.UrgencyHigh
	}
	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		VAPIDPublicKey:  s.env.VAPIDPublicKey,
		VAPIDPrivateKey: s.env.VAPIDPrivateKey,
		Subscriber:      s.env.VAPIDContact,
		TTL:             webPushTTL,
		Urgency:         urgency,
	})
	if err != nil {
		return fmt.Errorf("failed to send to %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		slog.Info("push notification: subscription expired, removing", "endpoint", sub.Endpoint)
		if err := s.repo.Delete(ctx, sub.ID); err != nil {
			slog.Error("push notification: failed to delete expired subscription", "id", sub.ID, "error", err)
		}
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service %s answered %d", sub.Endpoint, resp.StatusCode)
	}
	return nil
}
