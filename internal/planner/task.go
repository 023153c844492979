// Package planner turns a project selection and a worker roster into a
// dated schedule: tasks are generated from a stage pipeline, ordered by
// dependency, assigned first-fit to skilled workers with spare capacity,
// and checked for double-booking.
//
// The package is pure. It never reads the clock or the store; callers pass
// "today" and the roster in and get a Plan back.
package planner

import (
	"slices"
	"time"
)

type TaskType string

const (
	TaskTypeDesign             TaskType = "design"
	TaskTypePlumbingElectrical TaskType = "plumbing-electrical"
	TaskTypeCarpentry          TaskType = "carpentry"
	TaskTypePainting           TaskType = "painting"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusConflict  Status = "conflict"
)

type Task struct {
	ID             string   `json:"id"`
	ProjectID      string   `json:"project_id"`
	ProjectTitle   string   `json:"project_title"`
	TaskType       TaskType `json:"task_type"`
	EstimatedDays  int      `json:"estimated_days"`
	Priority       int      `json:"priority"`
	Dependencies   []string `json:"dependencies"`
	RequiredSkills []string `json:"required_skills"`
	Status         Status   `json:"status"`
}

func (t *Task) clone() *Task {
	c := *t
	c.Dependencies = slices.Clone(t.Dependencies)
	c.RequiredSkills = slices.Clone(t.RequiredSkills)
	return &c
}

// Worker is the planner's view of a roster member. Rosters are ordered;
// the order is the assignment tie-break.
type Worker struct {
	ID            string
	Name          string
	Skills        []string
	MaxConcurrent int
}

// HasSkills reports whether w has every skill in required.
func (w Worker) HasSkills(required []string) bool {
	for _, s := range required {
		if !slices.Contains(w.Skills, s) {
			return false
		}
	}
	return true
}

// Entry binds a task to a worker over the half-open day range
// [StartDate, EndDate).
type Entry struct {
	TaskID     string    `json:"task_id"`
	WorkerID   string    `json:"worker_id"`
	WorkerName string    `json:"worker_name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// Days is the length of the entry in calendar days.
func (e Entry) Days() int {
	return DaysBetween(e.StartDate, e.EndDate)
}

type ConflictType string

const ConflictTypeWorker ConflictType = "worker_conflict"

type Conflict struct {
	Type     ConflictType `json:"type"`
	Task1ID  string       `json:"task1_id"`
	Task2ID  string       `json:"task2_id"`
	WorkerID string       `json:"worker_id"`
	Message  string       `json:"message"`
}

type DiagnosticKind string

const (
	DiagnosticDependencyCycle DiagnosticKind = "dependency_cycle"
	DiagnosticUnassignable    DiagnosticKind = "unassignable"
	DiagnosticDanglingWorker  DiagnosticKind = "dangling_worker"
)

// Diagnostic is a warning carried alongside a Plan. None of them stop a run.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	TaskIDs  []string       `json:"task_ids"`
	WorkerID string         `json:"worker_id,omitempty"`
	Message  string         `json:"message"`
}
