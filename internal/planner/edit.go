package planner

import (
	"fmt"
	"slices"
	"time"

	"github.com/weidustudio/studio/pkg/cerr"
)

type EditKind string

const (
	EditReassign    EditKind = "reassign"
	EditMoveStart   EditKind = "move_start"
	EditSetEnd      EditKind = "set_end"
	EditSetDuration EditKind = "set_duration"
)

// Edit is a manual change to one booked task. WorkerID is used by
// reassign, Date by move_start and set_end, Days by set_duration.
type Edit struct {
	Kind     EditKind  `json:"kind" validate:"required,oneof=reassign move_start set_end set_duration"`
	TaskID   string    `json:"task_id" validate:"required"`
	WorkerID string    `json:"worker_id,omitempty" validate:"required_if=Kind reassign"`
	Date     time.Time `json:"date,omitzero" validate:"required_if=Kind move_start,required_if=Kind set_end"`
	Days     int       `json:"days,omitempty" validate:"required_if=Kind set_duration"`
}

// ApplyEdit returns a copy of plan with e applied and conflicts, statuses
// and roster diagnostics recomputed. Capacity is not enforced: an edit may
// double-book a worker, which then shows up as a conflict.
func ApplyEdit(plan *Plan, workers []Worker, e Edit, loc *time.Location) (*Plan, error) {
	out := plan.Clone()
	task, ok := out.Task(e.TaskID)
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, fmt.Sprintf("task %s not found", e.TaskID), nil)
	}
	idx := out.EntryIndex(e.TaskID)
	if idx < 0 {
		return nil, cerr.NewError(cerr.FailedPrecondition, fmt.Sprintf("task %s is not scheduled", e.TaskID), nil)
	}
	entry := &out.Entries[idx]

	switch e.Kind {
	case EditReassign:
		i := slices.IndexFunc(workers, func(w Worker) bool { return w.ID == e.WorkerID })
		if i < 0 {
			return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("worker %s not found", e.WorkerID), nil)
		}
		entry.WorkerID = workers[i].ID
		entry.WorkerName = workers[i].Name
	case EditMoveStart:
		days := entry.Days()
		entry.StartDate = Civil(e.Date, loc)
		entry.EndDate = AddDays(entry.StartDate, days)
	case EditSetEnd:
		end := Civil(e.Date, loc)
		if !end.After(entry.StartDate) {
			return nil, cerr.NewError(cerr.InvalidArgument, "end date must be after the start date", nil)
		}
		entry.EndDate = end
		task.EstimatedDays = entry.Days()
	case EditSetDuration:
		if e.Days < 1 {
			return nil, cerr.NewError(cerr.InvalidArgument, "a task lasts at least one day", nil)
		}
		task.EstimatedDays = e.Days
		entry.EndDate = AddDays(entry.StartDate, e.Days)
	default:
		return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown edit %q", e.Kind), nil)
	}

	out.Conflicts = DetectConflicts(out.Entries)
	DeriveStatuses(out.Tasks, out.Entries, out.Conflicts)
	diags := slices.DeleteFunc(out.Diagnostics, func(d Diagnostic) bool {
		return d.Kind == DiagnosticDanglingWorker
	})
	out.Diagnostics = append(diags, danglingDiagnostics(out.Entries, workers)...)
	return out, nil
}
