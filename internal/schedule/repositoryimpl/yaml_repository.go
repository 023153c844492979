package repositoryimpl

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/weidustudio/studio/internal/schedule"
	"github.com/weidustudio/studio/pkg/cerr"
	"github.com/weidustudio/studio/pkg/storage"
	"github.com/weidustudio/studio/pkg/yamlstore"
)

const schedulesPrefix = "schedules"

type projectSchedule struct {
	ProjectID   string                 `yaml:"project_id"`
	SavedAt     time.Time              `yaml:"saved_at"`
	Assignments []*schedule.Assignment `yaml:"assignments"`
}

// YAMLRepository keeps one document per project, schedules/<project>.yaml,
// so replacing a project's schedule is a single atomic write.
type YAMLRepository struct {
	mu   sync.Mutex
	docs *yamlstore.Collection[projectSchedule]
	loc  *time.Location
	now  func() time.Time
}

func NewYAMLRepository(s storage.Storage, loc *time.Location) *YAMLRepository {
	return &YAMLRepository{
		docs: yamlstore.New[projectSchedule](s, schedulesPrefix, "schedule"),
		loc:  loc,
		now:  time.Now,
	}
}

func (r *YAMLRepository) Replace(ctx context.Context, projectIDs []string, rows []*schedule.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byProject := make(map[string][]*schedule.Assignment)
	order := append([]string(nil), projectIDs...)
	for _, row := range rows {
		if _, ok := byProject[row.ProjectID]; !ok && !slices.Contains(order, row.ProjectID) {
			order = append(order, row.ProjectID)
		}
		byProject[row.ProjectID] = append(byProject[row.ProjectID], row)
	}
	for _, pid := range order {
		group := byProject[pid]
		if len(group) == 0 {
			if err := r.docs.Remove(ctx, pid); err != nil {
				return err
			}
			continue
		}
		doc := &projectSchedule{ProjectID: pid, SavedAt: r.now(), Assignments: group}
		if err := r.docs.Put(ctx, pid, doc); err != nil {
			return err
		}
	}
	return nil
}

func (r *YAMLRepository) Find(ctx context.Context, f schedule.Filter) ([]*schedule.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load(ctx, f.ProjectIDs)
	if err != nil {
		return nil, err
	}
	var out []*schedule.Assignment
	for _, doc := range docs {
		for _, a := range doc.Assignments {
			a.StartDate = a.StartDate.In(r.loc)
			a.EndDate = a.EndDate.In(r.loc)
			if f.Match(a) {
				out = append(out, a)
			}
		}
	}
	schedule.SortAssignments(out)
	return out, nil
}

func (r *YAMLRepository) load(ctx context.Context, projectIDs []string) ([]*projectSchedule, error) {
	if len(projectIDs) == 0 {
		return r.docs.List(ctx)
	}
	docs := make([]*projectSchedule, 0, len(projectIDs))
	for _, pid := range projectIDs {
		doc, err := r.docs.Get(ctx, pid)
		if cerr.IsCode(err, cerr.NotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *YAMLRepository) MarkNotified(ctx context.Context, projectID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.docs.Get(ctx, projectID)
	if err != nil {
		return err
	}
	for _, a := range doc.Assignments {
		if a.TaskID == taskID {
			a.Notified = true
			return r.docs.Put(ctx, projectID, doc)
		}
	}
	return cerr.NewError(cerr.NotFound, "assignment not found", nil)
}
