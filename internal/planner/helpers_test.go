package planner

import "time"

var today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return AddDays(today, n)
}

func task(id string, days int, deps ...string) *Task {
	return &Task{
		ID:             id,
		EstimatedDays:  days,
		Dependencies:   deps,
		RequiredSkills: []string{"any"},
		Status:         StatusPending,
	}
}

func ids(tasks []*Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func statuses(p *Plan) map[string]Status {
	m := make(map[string]Status, len(p.Tasks))
	for _, t := range p.Tasks {
		m[t.ID] = t.Status
	}
	return m
}

func entryFor(p *Plan, taskID string) (Entry, bool) {
	i := p.EntryIndex(taskID)
	if i < 0 {
		return Entry{}, false
	}
	return p.Entries[i], true
}
