package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	server "github.com/weidustudio/studio/internal"
	"github.com/weidustudio/studio/internal/app"
	"github.com/weidustudio/studio/internal/config"
	"github.com/weidustudio/studio/internal/event"
	"github.com/weidustudio/studio/internal/eventbus"
	"github.com/weidustudio/studio/internal/export"
	"github.com/weidustudio/studio/internal/notification"
	"github.com/weidustudio/studio/internal/pipeline"
	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/internal/project"
	"github.com/weidustudio/studio/internal/reminder"
	"github.com/weidustudio/studio/internal/schedule"
	"github.com/weidustudio/studio/internal/worker"
	"github.com/weidustudio/studio/pkg/clog"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(clog.NewLogger(os.Stderr, env.IsLocal(), env.SlogLevel()))

	if err := run(env); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(env *config.Env) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	loc, err := env.Location()
	if err != nil {
		return err
	}

	repos, err := app.OpenRepositories(ctx, &env.StorageEnv, loc)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("failed to close storage", "error", err)
		}
	}()

	if env.SeedDefaultWorkers {
		if _, err := worker.SeedDefaults(ctx, repos.Workers, time.Now); err != nil {
			return err
		}
	}

	opts := []planner.Option{planner.WithLocation(loc)}
	if env.PipelineFile != "" {
		watcher := pipeline.NewWatcher(env.PipelineFile)
		opts = append(opts, planner.WithPipelineSource(watcher))
		go func() {
			if err := watcher.Run(ctx); err != nil {
				slog.Error("pipeline watcher stopped", "error", err)
			}
		}()
	}
	p := planner.New(opts...)

	bus := eventbus.New()
	store := repos.Store()
	service := schedule.NewService(store, repos.Projects, p, bus)

	notifier, err := notification.FromEnv(ctx, &env.NotifyEnv, repos.Subscriptions)
	if err != nil {
		return err
	}
	dispatcher := notification.NewDispatcher(bus, notifier, env.AppURL)
	job := reminder.NewJob(store, notifier, p.Today, env.AppURL)

	srv := server.NewServer(
		&env.BaseEnv,
		worker.NewServer(store),
		project.NewServer(repos.Projects),
		schedule.NewServer(service),
		export.NewServer(store),
		notification.NewServer(&env.NotifyEnv, repos.Subscriptions, notifier),
		reminder.NewServer(job),
		event.NewServer(bus),
	)

	go dispatcher.Start(ctx)

	if env.ReminderEnabled {
		sched, err := reminder.NewScheduler(job, env.ReminderCron, loc)
		if err != nil {
			return err
		}
		go sched.Start(ctx)
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
