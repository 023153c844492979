package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/weidustudio/studio/internal/eventbus"
)

// Dispatcher turns schedule events into notifications. Only saves that
// leave conflicts or unassigned tasks behind are worth a message.
type Dispatcher struct {
	eventBus *eventbus.Bus
	notifier Notifier
	appURL   string
}

func NewDispatcher(eventBus *eventbus.Bus, notifier Notifier, appURL string) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		notifier: notifier,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("notification dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Type == eventbus.ScheduleSaved {
				d.handleScheduleSaved(ctx, event)
			}
		}
	}
}

func (d *Dispatcher) handleScheduleSaved(ctx context.Context, event *eventbus.Event) {
	msg := SavedMessage(event, d.appURL)
	if msg == nil {
		return
	}
	if err := d.notifier.Notify(ctx, msg); err != nil {
		slog.Error("dispatcher: failed to notify", "event_id", event.ID, "error", err)
	}
}

// SavedMessage summarises a schedule.saved event, or returns nil when the
// saved schedule needs no attention.
func SavedMessage(event *eventbus.Event, appURL string) *Message {
	saved, _ := strconv.Atoi(event.Metadata["saved"])
	conflicts, _ := strconv.Atoi(event.Metadata["conflicts"])
	pending, _ := strconv.Atoi(event.Metadata["pending"])
	if conflicts == 0 && pending == 0 {
		return nil
	}

	var problems []string
	if conflicts > 0 {
		problems = append(problems, plural(conflicts, "conflict"))
	}
	if pending > 0 {
		problems = append(problems, plural(pending, "unassigned task"))
	}
	q := url.Values{"project_id": {event.ResourceID}}
	return &Message{
		Title:  "Schedule needs attention",
		Body:   fmt.Sprintf("Saved %s for %s; %s.", plural(saved, "assignment"), event.ResourceID, strings.Join(problems, " and ")),
		URL:    appURL + "/schedule?" + q.Encode(),
		Tag:    "schedule-" + event.ResourceID,
		Urgent: conflicts > 0,
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
