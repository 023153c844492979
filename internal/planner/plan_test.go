package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPlanner(opts ...Option) *Planner {
	clock := func() time.Time { return today.Add(15*time.Hour + 30*time.Minute) }
	return New(append([]Option{WithClock(clock), WithLocation(time.UTC)}, opts...)...)
}

func TestPlanner_Today(t *testing.T) {
	assert.Equal(t, today, fixedPlanner().Today())

	tokyo := time.FixedZone("JST", 9*3600)
	p := New(WithClock(func() time.Time { return time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC) }), WithLocation(tokyo))
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, tokyo), p.Today())
}

func TestRun_SingleProjectChain(t *testing.T) {
	workers := []Worker{
		{ID: "w1", Name: "Plumber", Skills: []string{"plumbing-electrical"}, MaxConcurrent: 1},
		{ID: "w2", Name: "Carpenter", Skills: []string{"carpentry"}, MaxConcurrent: 1},
		{ID: "w3", Name: "Painter", Skills: []string{"painting", "design"}, MaxConcurrent: 1},
	}
	plan, err := fixedPlanner().Run([]ProjectRef{{ID: "P1", Title: "Villa"}}, workers)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{TaskID: "P1-design", WorkerID: "w3", WorkerName: "Painter", StartDate: day(0), EndDate: day(7)},
		{TaskID: "P1-water", WorkerID: "w1", WorkerName: "Plumber", StartDate: day(8), EndDate: day(13)},
		{TaskID: "P1-wood", WorkerID: "w2", WorkerName: "Carpenter", StartDate: day(14), EndDate: day(24)},
		{TaskID: "P1-paint", WorkerID: "w3", WorkerName: "Painter", StartDate: day(25), EndDate: day(30)},
	}, plan.Entries)
	assert.Empty(t, plan.Conflicts)
	assert.Empty(t, plan.Diagnostics)
	assert.Equal(t, 4, plan.CountStatus(StatusScheduled))
}

func TestRun_CapacityBreachLeavesSecondPending(t *testing.T) {
	workers := []Worker{{ID: "w1", Name: "Zhang", Skills: []string{"plumbing-electrical"}, MaxConcurrent: 1}}
	plan, err := fixedPlanner().Run([]ProjectRef{{ID: "P1"}, {ID: "P2"}}, workers)
	require.NoError(t, err)

	// Nobody designs, so both plumbing tasks fall back to today.
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "P1-water", plan.Entries[0].TaskID)
	assert.Equal(t, today, plan.Entries[0].StartDate)
	assert.Empty(t, plan.Conflicts)

	st := statuses(plan)
	assert.Equal(t, StatusScheduled, st["P1-water"])
	assert.Equal(t, StatusPending, st["P2-water"])
	assert.Equal(t, StatusPending, st["P1-design"])

	var unassignable []string
	for _, d := range plan.Diagnostics {
		require.Equal(t, DiagnosticUnassignable, d.Kind)
		unassignable = append(unassignable, d.TaskIDs...)
	}
	assert.Contains(t, unassignable, "P2-water")
	assert.NotContains(t, unassignable, "P1-water")
	assert.Len(t, unassignable, 7)
}

func TestRun_MultiCapacityWorkerReportsConflict(t *testing.T) {
	workers := []Worker{{ID: "w1", Name: "Zhang", Skills: []string{"plumbing-electrical"}, MaxConcurrent: 2}}
	plan, err := fixedPlanner().Run([]ProjectRef{{ID: "P1"}, {ID: "P2"}}, workers)
	require.NoError(t, err)

	require.Len(t, plan.Entries, 2)
	require.Len(t, plan.Conflicts, 1)
	assert.Equal(t, "P1-water", plan.Conflicts[0].Task1ID)
	assert.Equal(t, "P2-water", plan.Conflicts[0].Task2ID)
	st := statuses(plan)
	assert.Equal(t, StatusConflict, st["P1-water"])
	assert.Equal(t, StatusConflict, st["P2-water"])
}

func TestSchedule_CycleIsDiagnosticNotError(t *testing.T) {
	tasks := []*Task{task("A", 2, "B"), task("B", 3, "A")}
	workers := []Worker{{ID: "w", Skills: []string{"any"}, MaxConcurrent: 1}}

	plan, err := Schedule(tasks, workers, today)
	require.NoError(t, err)
	require.Len(t, plan.Tasks, 2)
	require.NotEmpty(t, plan.Diagnostics)
	assert.Equal(t, DiagnosticDependencyCycle, plan.Diagnostics[0].Kind)
	assert.Equal(t, "dependency cycle: A -> B -> A", plan.Diagnostics[0].Message)
	assert.Len(t, plan.Entries, 2)
	assert.Empty(t, plan.Conflicts)
}

func TestSchedule_StructuralErrorFailsRun(t *testing.T) {
	_, err := Schedule([]*Task{task("a", 1, "nope")}, nil, today)
	assert.ErrorIs(t, err, ErrUnknownDependency)
}

func TestRun_Deterministic(t *testing.T) {
	workers := []Worker{
		{ID: "z", Name: "Zhang", Skills: []string{"plumbing-electrical"}, MaxConcurrent: 2},
		{ID: "l", Name: "Li", Skills: []string{"carpentry"}, MaxConcurrent: 1},
		{ID: "w", Name: "Wang", Skills: []string{"painting"}, MaxConcurrent: 1},
		{ID: "a", Name: "Zhao", Skills: []string{"plumbing-electrical", "carpentry", "painting"}, MaxConcurrent: 1},
	}
	projects := []ProjectRef{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}

	first, err := fixedPlanner().Run(projects, workers)
	require.NoError(t, err)
	second, err := fixedPlanner().Run(projects, workers)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_EmptySelection(t *testing.T) {
	plan, err := fixedPlanner().Run(nil, []Worker{{ID: "w", MaxConcurrent: 1}})
	require.NoError(t, err)
	assert.Empty(t, plan.Tasks)
	assert.Empty(t, plan.Entries)
	assert.Empty(t, plan.Conflicts)
}

type swappablePipeline struct{ p Pipeline }

func (s *swappablePipeline) Pipeline() Pipeline { return s.p }

func TestPlanner_PipelineSource(t *testing.T) {
	src := &swappablePipeline{p: DefaultPipeline()}
	p := fixedPlanner(WithPipelineSource(src))
	assert.Len(t, p.Generate([]ProjectRef{{ID: "x"}}), 4)

	src.p = Pipeline{Stages: []Stage{{Key: "only", Type: TaskTypePainting, Days: 1}}}
	assert.Equal(t, []string{"x-only"}, ids(p.Generate([]ProjectRef{{ID: "x"}})))
}

func TestPlan_Clone(t *testing.T) {
	plan, err := fixedPlanner().Run([]ProjectRef{{ID: "p"}}, nil)
	require.NoError(t, err)
	c := plan.Clone()
	c.Tasks[0].Dependencies = append(c.Tasks[0].Dependencies, "x")
	c.Tasks[1].EstimatedDays = 99
	assert.Empty(t, plan.Tasks[0].Dependencies)
	assert.Equal(t, 5, plan.Tasks[1].EstimatedDays)
	assert.Equal(t, []string{"p"}, plan.ProjectIDs())
}
