package reminder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidustudio/studio/internal/notification"
	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/internal/schedule"
	"github.com/weidustudio/studio/pkg/cerr"
)

var today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type memSource struct {
	mu   sync.Mutex
	rows []*schedule.Assignment
}

func (m *memSource) FindAssignments(_ context.Context, f schedule.Filter) ([]*schedule.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*schedule.Assignment
	for _, r := range m.rows {
		if f.Match(r) {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memSource) MarkNotified(_ context.Context, projectID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ProjectID == projectID && r.TaskID == taskID {
			r.Notified = true
			return nil
		}
	}
	return cerr.NewError(cerr.NotFound, "assignment not found", nil)
}

func booking(taskID, worker string, start int) *schedule.Assignment {
	return &schedule.Assignment{
		ProjectID:    "P1",
		TaskID:       taskID,
		TaskType:     planner.TaskTypeCarpentry,
		ProjectTitle: "Villa",
		WorkerID:     "w-" + worker,
		WorkerName:   worker,
		StartDate:    today.AddDate(0, 0, start),
		EndDate:      today.AddDate(0, 0, start+10),
	}
}

type sink struct {
	mu   sync.Mutex
	msgs []*notification.Message
	fail map[string]bool
}

func (s *sink) Name() string { return "sink" }

func (s *sink) Notify(_ context.Context, m *notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[m.Tag] {
		return errors.New("unreachable")
	}
	s.msgs = append(s.msgs, m)
	return nil
}

func TestJob_Run(t *testing.T) {
	src := &memSource{rows: []*schedule.Assignment{
		booking("P1-wood", "Li", 0),
		booking("P1-paint", "Wang", 0),
		booking("P1-design", "Zhao", 1),
	}}
	out := &sink{fail: map[string]bool{"reminder-P1-paint": true}}
	job := NewJob(src, out, func() time.Time { return today }, "https://app.example/")

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{Due: 2, Sent: 1, Failed: 1}, res)
	require.Len(t, out.msgs, 1)
	assert.Equal(t, "carpentry starts today", out.msgs[0].Title)
	assert.Equal(t, "Li starts carpentry for Villa today, planned through 2026-03-11.", out.msgs[0].Body)
	assert.Equal(t, "https://app.example/schedule?project_id=P1", out.msgs[0].URL)

	// The failed delivery is retried; the sent one is not repeated.
	delete(out.fail, "reminder-P1-paint")
	res, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{Due: 1, Sent: 1}, res)

	res, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{}, res)
}

func TestScheduler(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	job := NewJob(&memSource{}, &sink{}, func() time.Time { return today }, "")

	s, err := NewScheduler(job, "", shanghai)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return !s.Next().IsZero() }, time.Second, 10*time.Millisecond)
	next := s.Next().In(shanghai)
	assert.Equal(t, 8, next.Hour())
	assert.Equal(t, 0, next.Minute())
	cancel()
	<-done

	_, err = NewScheduler(job, "every now and then", shanghai)
	assert.Error(t, err)
}

func TestServer_RunReminders(t *testing.T) {
	src := &memSource{rows: []*schedule.Assignment{booking("P1-wood", "Li", 0)}}
	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	NewServer(NewJob(src, &sink{}, func() time.Time { return today }, "")).Mount(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reminders/run", strings.NewReader("")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"due":1,"sent":1,"failed":0}`, rec.Body.String())
}
