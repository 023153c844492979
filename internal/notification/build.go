package notification

import (
	"context"

	"github.com/weidustudio/studio/internal/config"
	"github.com/weidustudio/studio/internal/pushsubscription"
)

// FromEnv builds a Multi over every configured channel. Web push is always
// included; it skips sending until VAPID keys are set.
func FromEnv(ctx context.Context, env *config.NotifyEnv, subs pushsubscription.Repository) (*Multi, error) {
	notifiers := []Notifier{NewWebPush(env, subs)}
	if env.NtfyTopic != "" {
		notifiers = append(notifiers, NewNtfy(env.NtfyServer, env.NtfyTopic, env.NtfyToken))
	}
	switch {
	case env.SlackWebhookURL != "":
		notifiers = append(notifiers, NewSlackWebhook(env.SlackWebhookURL))
	case env.SlackBotToken != "" && env.SlackChannel != "":
		notifiers = append(notifiers, NewSlackBot(env.SlackBotToken, env.SlackChannel))
	}
	if env.FCMCredentialsFile != "" {
		fcm, err := NewFCM(ctx, env.FCMCredentialsFile, env.FCMTopic)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, fcm)
	}
	return NewMulti(notifiers...), nil
}
