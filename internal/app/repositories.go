// Package app wires repositories and services from configuration for the
// server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/weidustudio/studio/internal/config"
	"github.com/weidustudio/studio/internal/database"
	"github.com/weidustudio/studio/internal/project"
	projectrepo "github.com/weidustudio/studio/internal/project/repositoryimpl"
	"github.com/weidustudio/studio/internal/pushsubscription"
	pushsubrepo "github.com/weidustudio/studio/internal/pushsubscription/repositoryimpl"
	"github.com/weidustudio/studio/internal/schedule"
	schedulerepo "github.com/weidustudio/studio/internal/schedule/repositoryimpl"
	"github.com/weidustudio/studio/internal/worker"
	workerrepo "github.com/weidustudio/studio/internal/worker/repositoryimpl"
	"github.com/weidustudio/studio/pkg/storage"
)

type Repositories struct {
	Workers       worker.Repository
	Projects      project.Repository
	Assignments   schedule.AssignmentRepository
	Subscriptions pushsubscription.Repository

	db *gorm.DB
}

// OpenRepositories picks YAML documents (local or s3) or a SQL database
// according to STORAGE_TYPE.
func OpenRepositories(ctx context.Context, env *config.StorageEnv, loc *time.Location) (*Repositories, error) {
	if env.Relational() {
		return openDatabase(ctx, env, loc)
	}

	var store storage.Storage
	var err error
	switch env.Type {
	case "s3":
		store, err = storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
	case "local", "":
		store, err = storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_TYPE %q", env.Type)
	}
	slog.Info("using document storage", "type", env.Type)
	return &Repositories{
		Workers:       workerrepo.NewYAMLRepository(store),
		Projects:      projectrepo.NewYAMLRepository(store),
		Assignments:   schedulerepo.NewYAMLRepository(store, loc),
		Subscriptions: pushsubrepo.NewYAMLRepository(store),
	}, nil
}

func openDatabase(ctx context.Context, env *config.StorageEnv, loc *time.Location) (*Repositories, error) {
	db, err := database.Open(ctx, database.Driver(env.Type), env.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	repos := &Repositories{db: db}
	if repos.Workers, err = workerrepo.NewGormRepository(db); err != nil {
		return nil, repos.closeWith(err)
	}
	if repos.Projects, err = projectrepo.NewGormRepository(db); err != nil {
		return nil, repos.closeWith(err)
	}
	if repos.Assignments, err = schedulerepo.NewGormRepository(db, loc); err != nil {
		return nil, repos.closeWith(err)
	}
	if repos.Subscriptions, err = pushsubrepo.NewGormRepository(db); err != nil {
		return nil, repos.closeWith(err)
	}
	slog.Info("using database storage", "driver", env.Type)
	return repos, nil
}

func (r *Repositories) closeWith(err error) error {
	if cerr := r.Close(); cerr != nil {
		slog.Error("failed to close database", "error", cerr)
	}
	return err
}

// Close releases the database connection, if any.
func (r *Repositories) Close() error {
	if r.db == nil {
		return nil
	}
	return database.Close(r.db)
}

// Store is the schedule store over these repositories.
func (r *Repositories) Store() *schedule.RepositoryStore {
	return schedule.NewStore(r.Workers, r.Assignments)
}
