package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ntfy publishes to an ntfy topic with a plain HTTP POST.
type Ntfy struct {
	server string
	topic  string
	token  string
	client *http.Client
}

var _ Notifier = (*Ntfy)(nil)

func NewNtfy(server, topic, token string) *Ntfy {
	return &Ntfy{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Ntfy) Name() string { return "ntfy" }

func (n *Ntfy) Notify(ctx context.Context, m *Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.server+"/"+n.topic, strings.NewReader(m.Body))
	if err != nil {
		return err
	}
	req.Header.Set("Title", m.Title)
	if m.URL != "" {
		req.Header.Set("Click", m.URL)
	}
	if m.Tag != "" {
		req.Header.Set("Tags", m.Tag)
	}
	if m.Urgent {
		req.Header.Set("Priority", "high")
	}
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish to ntfy: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ntfy answered %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
