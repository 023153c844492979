package schedule_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidustudio/studio/internal/eventbus"
	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/internal/schedule"
	"github.com/weidustudio/studio/internal/worker"
	"github.com/weidustudio/studio/pkg/cerr"
)

var villaEntries = []planner.Entry{
	{TaskID: "P1-design", WorkerID: "w3", WorkerName: "Wang", StartDate: day(0), EndDate: day(7)},
	{TaskID: "P1-water", WorkerID: "w1", WorkerName: "Zhang", StartDate: day(8), EndDate: day(13)},
	{TaskID: "P1-wood", WorkerID: "w2", WorkerName: "Li", StartDate: day(14), EndDate: day(24)},
	{TaskID: "P1-paint", WorkerID: "w3", WorkerName: "Wang", StartDate: day(25), EndDate: day(30)},
}

func TestService_GenerateSaveResume(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, events := f.bus.Subscribe(4)

	plan, err := f.service.Generate(ctx, []string{"P1"})
	require.NoError(t, err)
	requireSameEntries(t, villaEntries, plan.Entries)
	assert.Empty(t, plan.Conflicts)
	assert.Equal(t, 4, plan.CountStatus(planner.StatusScheduled))

	res, err := f.service.Save(ctx, []string{"P1"}, plan)
	require.NoError(t, err)
	assert.Equal(t, &schedule.SaveResult{Saved: 4}, res)

	select {
	case ev := <-events:
		assert.Equal(t, eventbus.ScheduleSaved, ev.Type)
		assert.Equal(t, "P1", ev.ResourceID)
		assert.Equal(t, map[string]string{"saved": "4", "conflicts": "0", "pending": "0"}, ev.Metadata)
	default:
		t.Fatal("no schedule.saved event")
	}

	resumed, err := f.service.Resume(ctx, []string{"P1"})
	require.NoError(t, err)
	requireSameEntries(t, villaEntries, resumed.Entries)
	assert.Equal(t, 4, resumed.CountStatus(planner.StatusScheduled))
	assert.Empty(t, resumed.Diagnostics)
}

func TestService_ResumeWithoutSavedSchedule(t *testing.T) {
	plan, err := newFixture(t).service.Resume(context.Background(), []string{"P1", "P2"})
	require.NoError(t, err)
	assert.Len(t, plan.Tasks, 8)
	assert.Empty(t, plan.Entries)
	assert.Equal(t, 8, plan.CountStatus(planner.StatusPending))
}

func TestService_ResumeReportsRemovedWorker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	plan, err := f.service.Generate(ctx, []string{"P1"})
	require.NoError(t, err)
	_, err = f.service.Save(ctx, []string{"P1"}, plan)
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteWorker(ctx, "w2"))

	resumed, err := f.service.Resume(ctx, []string{"P1"})
	require.NoError(t, err)
	requireSameEntries(t, villaEntries, resumed.Entries)
	require.Len(t, resumed.Diagnostics, 1)
	assert.Equal(t, planner.DiagnosticDanglingWorker, resumed.Diagnostics[0].Kind)
	assert.Equal(t, "w2", resumed.Diagnostics[0].WorkerID)
	assert.Equal(t, []string{"P1-wood"}, resumed.Diagnostics[0].TaskIDs)
}

func TestService_GenerateUnknownProject(t *testing.T) {
	_, err := newFixture(t).service.Generate(context.Background(), []string{"P1", "nope"})
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestService_ConcurrentGenerateReturnsCopies(t *testing.T) {
	f := newFixture(t)
	const n = 8
	plans := make([]*planner.Plan, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := f.service.Generate(context.Background(), []string{"P1", "P2"})
			assert.NoError(t, err)
			plans[i] = p
		}()
	}
	wg.Wait()

	for _, p := range plans[1:] {
		require.NotNil(t, p)
		assert.Equal(t, plans[0], p)
	}
	plans[0].Entries[0].WorkerID = "mutated"
	assert.NotEqual(t, "mutated", plans[1].Entries[0].WorkerID)
}

func TestService_SaveDerivesConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	plan, err := f.service.Generate(ctx, []string{"P1"})
	require.NoError(t, err)

	// Pull painting onto the design days; both belong to w3. The client
	// still claims there is no conflict.
	paint := plan.EntryIndex("P1-paint")
	plan.Entries[paint].StartDate = day(2)
	plan.Entries[paint].EndDate = day(7)
	plan.Conflicts = nil

	res, err := f.service.Save(ctx, []string{"P1"}, plan)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Conflicts)

	rows, err := f.store.FindAssignments(ctx, schedule.Filter{TaskIDs: []string{"P1-design", "P1-paint"}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, planner.StatusConflict, r.Status)
	}
}

func TestService_SaveValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Save(context.Background(), nil, &planner.Plan{})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	_, err = f.service.Save(context.Background(), []string{"P1"}, nil)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}

type failingStore struct {
	schedule.Store
}

func (failingStore) UpsertAssignments(context.Context, []string, *planner.Plan) error {
	return cerr.NewError(cerr.Internal, "server error", errors.New("disk full"))
}

func TestService_SaveFailureLeavesPlanUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	plan, err := f.service.Generate(ctx, []string{"P1"})
	require.NoError(t, err)
	before := plan.Clone()

	_, events := f.bus.Subscribe(1)
	svc := schedule.NewService(failingStore{f.store}, f.projects, f.service.Planner(), f.bus)
	_, err = svc.Save(ctx, []string{"P1"}, plan)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
	assert.Equal(t, before, plan)
	assert.Empty(t, events)
}

func TestService_Edit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	plan, err := f.service.Generate(ctx, []string{"P1"})
	require.NoError(t, err)

	edited, err := f.service.Edit(ctx, plan, planner.Edit{Kind: planner.EditSetDuration, TaskID: "P1-wood", Days: 12})
	require.NoError(t, err)
	wood := edited.Entries[edited.EntryIndex("P1-wood")]
	assert.True(t, day(26).Equal(wood.EndDate))
	// Carpentry now runs into painting, but on a different worker.
	assert.Empty(t, edited.Conflicts)
	requireSameEntries(t, villaEntries, plan.Entries)

	_, err = f.service.Edit(ctx, plan, planner.Edit{Kind: planner.EditReassign, TaskID: "P1-wood"})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	_, err = f.service.Edit(ctx, plan, planner.Edit{Kind: planner.EditReassign, TaskID: "P1-wood", WorkerID: "w1"})
	require.NoError(t, err)
}

func TestService_SavePublishesOneEventPerProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, events := f.bus.Subscribe(4)

	plan, err := f.service.Generate(ctx, []string{"P1", "P2"})
	require.NoError(t, err)
	res, err := f.service.Save(ctx, []string{"P1", "P2"}, plan)
	require.NoError(t, err)

	var ids []string
	saved, pending := 0, 0
	for range 2 {
		select {
		case ev := <-events:
			ids = append(ids, ev.ResourceID)
			n, _ := strconv.Atoi(ev.Metadata["saved"])
			saved += n
			n, _ = strconv.Atoi(ev.Metadata["pending"])
			pending += n
			if ev.ResourceID == "P1" {
				assert.Equal(t, map[string]string{"saved": "4", "conflicts": "0", "pending": "0"}, ev.Metadata)
			}
		default:
			t.Fatal("missing schedule.saved event")
		}
	}
	assert.Equal(t, []string{"P1", "P2"}, ids)
	assert.Equal(t, res.Saved, saved)
	assert.Equal(t, res.Pending, pending)
}

func TestService_SaveRejectsDoubleBookedTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, events := f.bus.Subscribe(1)

	plan, err := f.service.Generate(ctx, []string{"P1"})
	require.NoError(t, err)
	plan.Entries = append(plan.Entries, planner.Entry{
		TaskID: "P1-design", WorkerID: "w3", WorkerName: "Wang", StartDate: day(40), EndDate: day(47),
	})
	_, err = f.service.Save(ctx, []string{"P1"}, plan)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Empty(t, events)

	rows, err := f.store.FindAssignments(ctx, schedule.Filter{ProjectIDs: []string{"P1"}})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// contextStore fails reads once the caller's context is done.
type contextStore struct {
	schedule.Store
}

func (s contextStore) ListWorkers(ctx context.Context) ([]*worker.Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.ListWorkers(ctx)
}

func TestService_GenerateIgnoresCallerCancellation(t *testing.T) {
	f := newFixture(t)
	svc := schedule.NewService(contextStore{f.store}, f.projects, f.service.Planner(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	plan, err := svc.Generate(ctx, []string{"P1"})
	require.NoError(t, err)
	requireSameEntries(t, villaEntries, plan.Entries)
}
