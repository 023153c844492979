package schedule

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/internal/worker"
	"github.com/weidustudio/studio/pkg/cerr"
)

// Store is everything the scheduler needs from persistence.
type Store interface {
	// UpsertAssignments replaces every stored assignment of projectIDs
	// with the entries of plan. Repeating a call changes nothing.
	UpsertAssignments(ctx context.Context, projectIDs []string, plan *planner.Plan) error
	// LoadAssignments returns stored entries matching both filters,
	// ordered by start date.
	LoadAssignments(ctx context.Context, projectIDs, taskIDs []string) ([]planner.Entry, error)
	ListWorkers(ctx context.Context) ([]*worker.Worker, error)
	UpsertWorker(ctx context.Context, w *worker.Worker) error
	// DeleteWorker removes a worker even when assignments still name it.
	DeleteWorker(ctx context.Context, id string) error
}

type RepositoryStore struct {
	workers     worker.Repository
	assignments AssignmentRepository
}

var _ Store = (*RepositoryStore)(nil)

func NewStore(workers worker.Repository, assignments AssignmentRepository) *RepositoryStore {
	return &RepositoryStore{workers: workers, assignments: assignments}
}

func (s *RepositoryStore) UpsertAssignments(ctx context.Context, projectIDs []string, plan *planner.Plan) error {
	rows := AssignmentsFromPlan(plan)
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.TaskID]; dup {
			return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("task %s is booked more than once", row.TaskID), nil)
		}
		seen[row.TaskID] = struct{}{}
		if !slices.Contains(projectIDs, row.ProjectID) {
			return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("task %s belongs to project %s which is not being saved", row.TaskID, row.ProjectID), nil)
		}
		if !row.StartDate.Before(row.EndDate) {
			return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("task %s must end after it starts", row.TaskID), nil)
		}
	}

	// Keep reminder state for bookings that did not move.
	prev, err := s.assignments.Find(ctx, Filter{ProjectIDs: projectIDs})
	if err != nil {
		return err
	}
	for _, row := range rows {
		for _, p := range prev {
			if p.TaskID == row.TaskID && p.Notified && p.StartDate.Equal(row.StartDate) && p.WorkerID == row.WorkerID {
				row.Notified = true
			}
		}
	}
	return s.assignments.Replace(ctx, projectIDs, rows)
}

func (s *RepositoryStore) LoadAssignments(ctx context.Context, projectIDs, taskIDs []string) ([]planner.Entry, error) {
	if len(projectIDs) == 0 || len(taskIDs) == 0 {
		return []planner.Entry{}, nil
	}
	rows, err := s.assignments.Find(ctx, Filter{ProjectIDs: projectIDs, TaskIDs: taskIDs})
	if err != nil {
		return nil, err
	}
	entries := make([]planner.Entry, len(rows))
	for i, row := range rows {
		entries[i] = row.Entry()
	}
	return entries, nil
}

func (s *RepositoryStore) FindAssignments(ctx context.Context, f Filter) ([]*Assignment, error) {
	return s.assignments.Find(ctx, f)
}

func (s *RepositoryStore) MarkNotified(ctx context.Context, projectID, taskID string) error {
	return s.assignments.MarkNotified(ctx, projectID, taskID)
}

func (s *RepositoryStore) ListWorkers(ctx context.Context) ([]*worker.Worker, error) {
	return s.workers.List(ctx)
}

// UpsertWorker creates w or replaces the stored worker with the same id,
// keeping its creation time so roster order is stable.
func (s *RepositoryStore) UpsertWorker(ctx context.Context, w *worker.Worker) error {
	if err := w.Validate(); err != nil {
		return err
	}
	cur, err := s.workers.Get(ctx, w.ID)
	switch {
	case cerr.IsCode(err, cerr.NotFound):
		if w.CreatedAt.IsZero() {
			w.CreatedAt = w.UpdatedAt
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = time.Now()
			w.UpdatedAt = w.CreatedAt
		}
		return s.workers.Create(ctx, w)
	case err != nil:
		return err
	}
	w.CreatedAt = cur.CreatedAt
	return s.workers.Update(ctx, w)
}

func (s *RepositoryStore) DeleteWorker(ctx context.Context, id string) error {
	return s.workers.Delete(ctx, id)
}
