package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/oklog/ulid/v2"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/weidustudio/studio/internal/export"
	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/internal/schedule"
	"github.com/weidustudio/studio/internal/worker"
)

type commands struct {
	out     io.Writer
	store   *schedule.RepositoryStore
	service *schedule.Service
	now     func() time.Time
}

func (c *commands) plan(ctx context.Context, projectIDs []string, save, asJSON bool) error {
	p, err := c.service.Generate(ctx, projectIDs)
	if err != nil {
		return err
	}
	if save {
		res, err := c.service.Save(ctx, projectIDs, p)
		if err != nil {
			return err
		}
		defer fmt.Fprintf(c.out, "saved %d entries (%d conflicts, %d pending)\n", res.Saved, res.Conflicts, res.Pending)
	}
	if asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	return writePlan(c.out, p)
}

func (c *commands) listWorkers(ctx context.Context) error {
	workers, err := c.store.ListWorkers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tSKILLS\tMAX")
	for _, w := range workers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", w.ID, w.Name, w.Role, strings.Join(w.Skills, ","), w.MaxConcurrent)
	}
	return tw.Flush()
}

func (c *commands) addWorker(ctx context.Context, name, role string, skills []string, maxConcurrent int) error {
	now := c.now()
	w := &worker.Worker{
		ID:            ulid.Make().String(),
		Name:          name,
		Role:          role,
		Skills:        skills,
		MaxConcurrent: maxConcurrent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.store.UpsertWorker(ctx, w); err != nil {
		return err
	}
	fmt.Fprintln(c.out, w.ID)
	return nil
}

func (c *commands) removeWorker(ctx context.Context, id string) error {
	return c.store.DeleteWorker(ctx, id)
}

func (c *commands) export(ctx context.Context, projectIDs []string, out string) error {
	rows, err := c.store.FindAssignments(ctx, schedule.Filter{ProjectIDs: projectIDs})
	if err != nil {
		return err
	}
	if out == "" {
		out = export.Filename(projectIDs)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %d rows to %s\n", len(rows), out)
	return nil
}

func (c *commands) diff(ctx context.Context, projectIDs []string) error {
	saved, err := c.service.Resume(ctx, projectIDs)
	if err != nil {
		return err
	}
	fresh, err := c.service.Generate(ctx, projectIDs)
	if err != nil {
		return err
	}
	d, err := diffPlans(saved, fresh)
	if err != nil {
		return err
	}
	if d == "" {
		fmt.Fprintln(c.out, "saved schedule is up to date")
		return nil
	}
	_, err = io.WriteString(c.out, d)
	return err
}

// planLines renders one line per task, in plan order.
func planLines(p *planner.Plan) []string {
	byTask := make(map[string]planner.Entry, len(p.Entries))
	for _, e := range p.Entries {
		byTask[e.TaskID] = e
	}
	lines := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		e, ok := byTask[t.ID]
		if !ok {
			lines = append(lines, fmt.Sprintf("%s %s unassigned\n", t.ID, t.Status))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s..%s\n",
			t.ID, t.Status, e.WorkerName, e.StartDate.Format(time.DateOnly), e.EndDate.Format(time.DateOnly)))
	}
	return lines
}

// diffPlans is a unified diff from saved to fresh; empty when they agree.
func diffPlans(saved, fresh *planner.Plan) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        planLines(saved),
		B:        planLines(fresh),
		FromFile: "saved",
		ToFile:   "generated",
		Context:  2,
	})
}

var statusColors = map[planner.Status]*color.Color{
	planner.StatusScheduled: color.New(color.FgGreen),
	planner.StatusPending:   color.New(color.FgYellow),
	planner.StatusConflict:  color.New(color.FgRed, color.Bold),
}

func writePlan(w io.Writer, p *planner.Plan) error {
	byTask := make(map[string]planner.Entry, len(p.Entries))
	for _, e := range p.Entries {
		byTask[e.TaskID] = e
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tSTATUS\tWORKER\tSTART\tEND\tDAYS")
	for _, t := range p.Tasks {
		status := string(t.Status)
		if c, ok := statusColors[t.Status]; ok {
			status = c.Sprint(status)
		}
		e, ok := byTask[t.ID]
		if !ok {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t%d\n", t.ID, status, t.EstimatedDays)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", t.ID, status, e.WorkerName,
			e.StartDate.Format(time.DateOnly), e.EndDate.Format(time.DateOnly), e.Days())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, cf := range p.Conflicts {
		fmt.Fprintf(w, "conflict: %s\n", cf.Message)
	}
	for _, d := range p.Diagnostics {
		fmt.Fprintf(w, "%s: %s\n", d.Kind, d.Message)
	}
	return nil
}
