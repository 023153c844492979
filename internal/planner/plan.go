package planner

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Plan is the outcome of one run: tasks in dependency order with derived
// statuses, the entries booked for them, and the diagnostics found along
// the way.
type Plan struct {
	Tasks       []*Task      `json:"tasks"`
	Entries     []Entry      `json:"entries"`
	Conflicts   []Conflict   `json:"conflicts"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

func (p *Plan) Clone() *Plan {
	c := &Plan{
		Tasks:       make([]*Task, len(p.Tasks)),
		Entries:     slices.Clone(p.Entries),
		Conflicts:   slices.Clone(p.Conflicts),
		Diagnostics: slices.Clone(p.Diagnostics),
	}
	for i, t := range p.Tasks {
		c.Tasks[i] = t.clone()
	}
	return c
}

func (p *Plan) Task(id string) (*Task, bool) {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

func (p *Plan) EntryIndex(taskID string) int {
	return slices.IndexFunc(p.Entries, func(e Entry) bool { return e.TaskID == taskID })
}

func (p *Plan) CountStatus(s Status) int {
	n := 0
	for _, t := range p.Tasks {
		if t.Status == s {
			n++
		}
	}
	return n
}

// ProjectIDs lists the projects of the plan's tasks in first-seen order.
func (p *Plan) ProjectIDs() []string {
	var ids []string
	for _, t := range p.Tasks {
		if !slices.Contains(ids, t.ProjectID) {
			ids = append(ids, t.ProjectID)
		}
	}
	return ids
}

// Clock returns the current instant; tests pin it.
type Clock func() time.Time

// PipelineSource supplies the pipeline for the next run.
type PipelineSource interface {
	Pipeline() Pipeline
}

type staticPipeline Pipeline

func (s staticPipeline) Pipeline() Pipeline { return Pipeline(s) }

type Planner struct {
	clock    Clock
	loc      *time.Location
	pipeline PipelineSource
}

type Option func(*Planner)

func WithClock(c Clock) Option {
	return func(p *Planner) { p.clock = c }
}

func WithLocation(loc *time.Location) Option {
	return func(p *Planner) { p.loc = loc }
}

func WithPipeline(pl Pipeline) Option {
	return func(p *Planner) { p.pipeline = staticPipeline(pl) }
}

func WithPipelineSource(src PipelineSource) Option {
	return func(p *Planner) { p.pipeline = src }
}

func New(opts ...Option) *Planner {
	p := &Planner{
		clock:    time.Now,
		loc:      time.Local,
		pipeline: staticPipeline(DefaultPipeline()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Today is midnight of the current day in the planner's time zone.
func (p *Planner) Today() time.Time {
	return Midnight(p.clock(), p.loc)
}

func (p *Planner) Location() *time.Location {
	return p.loc
}

func (p *Planner) Generate(projects []ProjectRef) []*Task {
	return Generate(projects, p.pipeline.Pipeline())
}

// Run regenerates the whole schedule for projects from scratch.
func (p *Planner) Run(projects []ProjectRef, workers []Worker) (*Plan, error) {
	return Schedule(p.Generate(projects), workers, p.Today())
}

// Schedule sorts, assigns and checks tasks. Only a malformed batch is an
// error; cycles, unassignable tasks and conflicts are reported in the Plan.
func Schedule(tasks []*Task, workers []Worker, today time.Time) (*Plan, error) {
	sorted, cycles, err := Sort(tasks)
	if err != nil {
		return nil, err
	}
	entries := Assign(sorted, workers, today)
	conflicts := DetectConflicts(entries)
	DeriveStatuses(sorted, entries, conflicts)

	plan := &Plan{
		Tasks:       sorted,
		Entries:     entries,
		Conflicts:   conflicts,
		Diagnostics: cycleDiagnostics(cycles),
	}
	plan.Diagnostics = append(plan.Diagnostics, unassignableDiagnostics(sorted)...)
	return plan, nil
}

func cycleDiagnostics(cycles []Cycle) []Diagnostic {
	diags := []Diagnostic{}
	for _, c := range cycles {
		path := append(slices.Clone(c.TaskIDs), c.TaskIDs[0])
		diags = append(diags, Diagnostic{
			Kind:    DiagnosticDependencyCycle,
			TaskIDs: c.TaskIDs,
			Message: "dependency cycle: " + strings.Join(path, " -> "),
		})
	}
	return diags
}

func unassignableDiagnostics(tasks []*Task) []Diagnostic {
	var diags []Diagnostic
	for _, t := range tasks {
		if t.Status != StatusPending {
			continue
		}
		diags = append(diags, Diagnostic{
			Kind:    DiagnosticUnassignable,
			TaskIDs: []string{t.ID},
			Message: fmt.Sprintf("no worker with skills [%s] has capacity for %s", strings.Join(t.RequiredSkills, ", "), t.ID),
		})
	}
	return diags
}

// danglingDiagnostics reports entries whose worker is not on the roster.
func danglingDiagnostics(entries []Entry, workers []Worker) []Diagnostic {
	var diags []Diagnostic
	for _, e := range entries {
		known := slices.ContainsFunc(workers, func(w Worker) bool { return w.ID == e.WorkerID })
		if known {
			continue
		}
		diags = append(diags, Diagnostic{
			Kind:     DiagnosticDanglingWorker,
			TaskIDs:  []string{e.TaskID},
			WorkerID: e.WorkerID,
			Message:  fmt.Sprintf("task %s is booked on worker %s who is no longer on the roster", e.TaskID, displayName(e)),
		})
	}
	return diags
}

// Normalize moves entry dates onto midnights in loc, keeping their
// calendar dates.
func (p *Plan) Normalize(loc *time.Location) {
	for i := range p.Entries {
		p.Entries[i].StartDate = Civil(p.Entries[i].StartDate, loc)
		p.Entries[i].EndDate = Civil(p.Entries[i].EndDate, loc)
	}
}
