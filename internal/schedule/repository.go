package schedule

import (
	"cmp"
	"context"
	"slices"
	"time"
)

// Filter selects stored assignments. Empty fields match everything.
type Filter struct {
	ProjectIDs []string
	TaskIDs    []string
	// StartDate matches assignments starting on that calendar day.
	StartDate *time.Time
	Notified  *bool
}

func (f Filter) Match(a *Assignment) bool {
	if len(f.ProjectIDs) > 0 && !slices.Contains(f.ProjectIDs, a.ProjectID) {
		return false
	}
	if len(f.TaskIDs) > 0 && !slices.Contains(f.TaskIDs, a.TaskID) {
		return false
	}
	if f.StartDate != nil {
		fy, fm, fd := f.StartDate.Date()
		ay, am, ad := a.StartDate.Date()
		if fy != ay || fm != am || fd != ad {
			return false
		}
	}
	if f.Notified != nil && a.Notified != *f.Notified {
		return false
	}
	return true
}

type AssignmentRepository interface {
	// Replace deletes every assignment of projectIDs and stores rows in
	// their place.
	Replace(ctx context.Context, projectIDs []string, rows []*Assignment) error
	// Find returns matching assignments ordered by start date, then task id.
	Find(ctx context.Context, f Filter) ([]*Assignment, error)
	MarkNotified(ctx context.Context, projectID, taskID string) error
}

func SortAssignments(rows []*Assignment) {
	slices.SortStableFunc(rows, func(a, b *Assignment) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return cmp.Compare(a.TaskID, b.TaskID)
	})
}
