// Package notification delivers schedule messages to people: browser push,
// ntfy topics, Slack and Firebase Cloud Messaging.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"github.com/weidustudio/studio/pkg/panicerr"
)

type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	// URL is opened when the notification is clicked.
	URL string `json:"url,omitempty"`
	// Tag collapses repeated notifications about the same thing.
	Tag string `json:"tag,omitempty"`
	// Urgent raises the priority where the channel supports it.
	Urgent bool `json:"-"`
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, m *Message) error
}

// Multi sends every message through all of its notifiers concurrently.
type Multi struct {
	notifiers []Notifier
}

var _ Notifier = (*Multi)(nil)

func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Len() int { return len(m.notifiers) }

// Notify waits for every channel. A failing or panicking channel does not
// stop the others; their errors are joined.
func (m *Multi) Notify(ctx context.Context, msg *Message) error {
	p := pool.New().WithErrors().WithContext(ctx)
	for _, n := range m.notifiers {
		p.Go(func(ctx context.Context) error {
			err := panicerr.SafeContext(func(ctx context.Context) error {
				return n.Notify(ctx, msg)
			})(ctx)
			if err != nil {
				slog.Warn("notification: channel failed", "channel", n.Name(), "title", msg.Title, "error", err)
				return fmt.Errorf("%s: %w", n.Name(), err)
			}
			return nil
		})
	}
	return p.Wait()
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, m *Message) error

func (f Func) Name() string { return "func" }

func (f Func) Notify(ctx context.Context, m *Message) error { return f(ctx, m) }
