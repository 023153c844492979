package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/weidustudio/studio/pkg/panicerr"
)

const DefaultSpec = "0 0 8 * * *"

// Scheduler runs a Job on a six-field cron spec (seconds first) in the
// studio's time zone.
type Scheduler struct {
	cron    *cron.Cron
	job     *Job
	entryID cron.EntryID
}

func NewScheduler(job *Job, spec string, loc *time.Location) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	logger := slogLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		),
		job: job,
	}
	id, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("error scheduling reminder job %q: %w", spec, err)
	}
	s.entryID = id
	return s, nil
}

func (s *Scheduler) run() {
	err := panicerr.Safe(func() error {
		_, err := s.job.Run(context.Background())
		return err
	})()
	if err != nil {
		slog.Error("reminder: run failed", "error", err)
	}
}

// Next is the time of the next scheduled run.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Start runs the scheduler until ctx is done, then waits for a running job
// to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	slog.Info("reminder scheduler started", "next", s.Next())
	<-ctx.Done()
	<-s.cron.Stop().Done()
	slog.Info("reminder scheduler stopped")
}

// slogLogger adapts cron's logger to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
