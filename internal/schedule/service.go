package schedule

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/weidustudio/studio/internal/eventbus"
	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/internal/project"
	"github.com/weidustudio/studio/internal/worker"
	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/clog"
	"github.com/weidustudio/studio/pkg/validation"
)

// Service runs the planner against stored projects and workers and
// persists the result.
type Service struct {
	store    Store
	projects project.Repository
	planner  *planner.Planner
	bus      *eventbus.Bus
	runs     singleflight.Group
}

func NewService(store Store, projects project.Repository, p *planner.Planner, bus *eventbus.Bus) *Service {
	return &Service{store: store, projects: projects, planner: p, bus: bus}
}

func (s *Service) Planner() *planner.Planner {
	return s.planner
}

func (s *Service) inputs(ctx context.Context, projectIDs []string) ([]planner.ProjectRef, []planner.Worker, error) {
	refs, err := project.Refs(ctx, s.projects, projectIDs)
	if err != nil {
		return nil, nil, err
	}
	workers, err := s.store.ListWorkers(ctx)
	if err != nil {
		return nil, nil, err
	}
	return refs, worker.Resources(workers), nil
}

// Generate builds a fresh schedule for projectIDs. Identical concurrent
// requests share one run.
func (s *Service) Generate(ctx context.Context, projectIDs []string) (*planner.Plan, error) {
	key := strings.Join(projectIDs, ",")
	// The run outlives a caller that goes away; others may share it.
	runCtx := context.WithoutCancel(ctx)
	v, err, shared := s.runs.Do(key, func() (any, error) {
		refs, workers, err := s.inputs(runCtx, projectIDs)
		if err != nil {
			return nil, err
		}
		return s.planner.Run(refs, workers)
	})
	if err != nil {
		return nil, err
	}
	plan := v.(*planner.Plan)
	clog.AddAttributes(ctx, map[string]any{
		"plan": map[string]any{
			"tasks":       len(plan.Tasks),
			"entries":     len(plan.Entries),
			"conflicts":   len(plan.Conflicts),
			"diagnostics": len(plan.Diagnostics),
			"shared":      shared,
		},
	})
	return plan.Clone(), nil
}

// Resume regenerates the task list and overlays the saved entries instead
// of assigning again.
func (s *Service) Resume(ctx context.Context, projectIDs []string) (*planner.Plan, error) {
	refs, workers, err := s.inputs(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	tasks := s.planner.Generate(refs)
	taskIDs := make([]string, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}
	saved, err := s.store.LoadAssignments(ctx, projectIDs, taskIDs)
	if err != nil {
		return nil, err
	}
	return planner.Restore(tasks, workers, saved)
}

type SaveResult struct {
	Saved     int `json:"saved"`
	Conflicts int `json:"conflicts"`
	Pending   int `json:"pending"`
}

// Save stores plan as the schedule of projectIDs. Conflicts and statuses
// are derived again from the entries, so a stale client view cannot be
// persisted.
func (s *Service) Save(ctx context.Context, projectIDs []string, plan *planner.Plan) (*SaveResult, error) {
	if len(projectIDs) == 0 {
		return nil, cerr.NewError(cerr.InvalidArgument, "no projects selected", nil)
	}
	if plan == nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "plan is required", nil)
	}
	p := plan.Clone()
	p.Normalize(s.planner.Location())
	p.Conflicts = planner.DetectConflicts(p.Entries)
	planner.DeriveStatuses(p.Tasks, p.Entries, p.Conflicts)

	if err := s.store.UpsertAssignments(ctx, projectIDs, p); err != nil {
		return nil, err
	}
	res := &SaveResult{
		Saved:     len(AssignmentsFromPlan(p)),
		Conflicts: len(p.Conflicts),
		Pending:   p.CountStatus(planner.StatusPending),
	}
	clog.AddAttribute(ctx, "saved", res.Saved)
	if s.bus != nil {
		for _, id := range projectIDs {
			sum := projectSummary(p, id)
			s.bus.PublishNew(eventbus.ScheduleSaved, id, map[string]string{
				"saved":     strconv.Itoa(sum.Saved),
				"conflicts": strconv.Itoa(sum.Conflicts),
				"pending":   strconv.Itoa(sum.Pending),
			})
		}
	}
	return res, nil
}

// projectSummary counts the part of a saved plan that concerns one
// project. A conflict counts when either of its tasks belongs to it.
func projectSummary(p *planner.Plan, projectID string) SaveResult {
	var sum SaveResult
	inProject := func(taskID string) bool {
		t, ok := p.Task(taskID)
		return ok && t.ProjectID == projectID
	}
	for _, e := range p.Entries {
		if inProject(e.TaskID) {
			sum.Saved++
		}
	}
	for _, c := range p.Conflicts {
		if inProject(c.Task1ID) || inProject(c.Task2ID) {
			sum.Conflicts++
		}
	}
	for _, t := range p.Tasks {
		if t.ProjectID == projectID && t.Status == planner.StatusPending {
			sum.Pending++
		}
	}
	return sum
}

// Edit applies a manual change to plan against the current roster.
func (s *Service) Edit(ctx context.Context, plan *planner.Plan, e planner.Edit) (*planner.Plan, error) {
	if plan == nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "plan is required", nil)
	}
	if err := validation.Struct(e, "invalid edit"); err != nil {
		return nil, err
	}
	workers, err := s.store.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	clog.AddAttributes(ctx, map[string]any{"edit": string(e.Kind), "task_id": e.TaskID})
	in := plan.Clone()
	in.Normalize(s.planner.Location())
	return planner.ApplyEdit(in, worker.Resources(workers), e, s.planner.Location())
}
