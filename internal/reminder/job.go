// Package reminder tells workers on the morning a booked task starts.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/weidustudio/studio/internal/notification"
	"github.com/weidustudio/studio/internal/schedule"
)

// Source is the part of the schedule store the job reads and updates.
type Source interface {
	FindAssignments(ctx context.Context, f schedule.Filter) ([]*schedule.Assignment, error)
	MarkNotified(ctx context.Context, projectID, taskID string) error
}

type Result struct {
	Due    int `json:"due"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Job sends one message per assignment starting today that has not been
// reminded yet, and marks it reminded once delivered. A failed delivery is
// retried on the next run the same day.
type Job struct {
	source   Source
	notifier notification.Notifier
	today    func() time.Time
	appURL   string

	// Runs must not overlap or a booking could be reminded twice.
	mu sync.Mutex
}

func NewJob(source Source, notifier notification.Notifier, today func() time.Time, appURL string) *Job {
	return &Job{
		source:   source,
		notifier: notifier,
		today:    today,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

func (j *Job) Run(ctx context.Context) (*Result, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	today := j.today()
	notified := false
	due, err := j.source.FindAssignments(ctx, schedule.Filter{StartDate: &today, Notified: &notified})
	if err != nil {
		return nil, err
	}
	res := &Result{Due: len(due)}
	for _, a := range due {
		if err := j.notifier.Notify(ctx, j.message(a)); err != nil {
			res.Failed++
			slog.Warn("reminder: failed to notify", "task_id", a.TaskID, "error", err)
			continue
		}
		if err := j.source.MarkNotified(ctx, a.ProjectID, a.TaskID); err != nil {
			res.Failed++
			slog.Error("reminder: failed to mark notified", "task_id", a.TaskID, "error", err)
			continue
		}
		res.Sent++
	}
	slog.Info("reminder: run finished", "date", today.Format(time.DateOnly), "due", res.Due, "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

func (j *Job) message(a *schedule.Assignment) *notification.Message {
	who := a.WorkerName
	if who == "" {
		who = a.WorkerID
	}
	last := a.EndDate.AddDate(0, 0, -1)
	q := url.Values{"project_id": {a.ProjectID}}
	return &notification.Message{
		Title: fmt.Sprintf("%s starts today", a.TaskType),
		Body: fmt.Sprintf("%s starts %s for %s today, planned through %s.",
			who, a.TaskType, a.ProjectTitle, last.Format(time.DateOnly)),
		URL: j.appURL + "/schedule?" + q.Encode(),
		Tag: "reminder-" + a.TaskID,
	}
}
