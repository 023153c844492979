package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/weidustudio/studio/internal/database"
	"github.com/weidustudio/studio/internal/eventbus"
	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/internal/project"
	projectimpl "github.com/weidustudio/studio/internal/project/repositoryimpl"
	"github.com/weidustudio/studio/internal/schedule"
	scheduleimpl "github.com/weidustudio/studio/internal/schedule/repositoryimpl"
	"github.com/weidustudio/studio/internal/worker"
	workerimpl "github.com/weidustudio/studio/internal/worker/repositoryimpl"
	"github.com/weidustudio/studio/pkg/storage"
)

var today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return planner.AddDays(today, n)
}

type fixture struct {
	store    *schedule.RepositoryStore
	projects project.Repository
	bus      *eventbus.Bus
	service  *schedule.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	f := &fixture{
		store:    schedule.NewStore(workerimpl.NewYAMLRepository(s), scheduleimpl.NewYAMLRepository(s, time.UTC)),
		projects: projectimpl.NewYAMLRepository(s),
		bus:      eventbus.New(),
	}
	p := planner.New(
		planner.WithClock(func() time.Time { return today.Add(9 * time.Hour) }),
		planner.WithLocation(time.UTC),
	)
	f.service = schedule.NewService(f.store, f.projects, p, f.bus)

	for _, w := range []*worker.Worker{
		{ID: "w1", Name: "Zhang", Skills: []string{"plumbing-electrical"}, MaxConcurrent: 1},
		{ID: "w2", Name: "Li", Skills: []string{"carpentry"}, MaxConcurrent: 1},
		{ID: "w3", Name: "Wang", Skills: []string{"painting", "design"}, MaxConcurrent: 1},
	} {
		w.UpdatedAt = today
		require.NoError(t, f.store.UpsertWorker(ctx, w))
	}
	for _, p := range []*project.Project{
		{ID: "P1", Title: "Villa", CreatedAt: today, UpdatedAt: today},
		{ID: "P2", Title: "Loft", CreatedAt: today, UpdatedAt: today},
	} {
		require.NoError(t, f.projects.Create(ctx, p))
	}
	return f
}

func requireSameEntries(t *testing.T, want, got []planner.Entry) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].TaskID, got[i].TaskID)
		require.Equal(t, want[i].WorkerID, got[i].WorkerID)
		require.Equal(t, want[i].WorkerName, got[i].WorkerName)
		require.True(t, want[i].StartDate.Equal(got[i].StartDate), "%s start %s != %s", want[i].TaskID, want[i].StartDate, got[i].StartDate)
		require.True(t, want[i].EndDate.Equal(got[i].EndDate), "%s end %s != %s", want[i].TaskID, want[i].EndDate, got[i].EndDate)
	}
}

// backendStores returns an empty store per persistence backend.
func backendStores(t *testing.T) map[string]*schedule.RepositoryStore {
	t.Helper()
	db, err := database.OpenMemory(context.Background(), "schedule_"+ulid.Make().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	workers, err := workerimpl.NewGormRepository(db)
	require.NoError(t, err)
	assignments, err := scheduleimpl.NewGormRepository(db, time.UTC)
	require.NoError(t, err)

	s := storage.NewMemoryStorage()
	return map[string]*schedule.RepositoryStore{
		"yaml": schedule.NewStore(workerimpl.NewYAMLRepository(s), scheduleimpl.NewYAMLRepository(s, time.UTC)),
		"gorm": schedule.NewStore(workers, assignments),
	}
}
