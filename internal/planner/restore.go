package planner

// Restore rebuilds a plan from previously saved entries instead of running
// assignment, so a saved schedule can be viewed and edited again. Saved
// entries for tasks outside the batch are ignored, the first entry per task
// wins, and a task's duration is taken from its saved interval. Entries
// whose worker has since left the roster are kept and reported.
func Restore(tasks []*Task, workers []Worker, saved []Entry) (*Plan, error) {
	sorted, cycles, err := Sort(tasks)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Task, len(sorted))
	for _, t := range sorted {
		byID[t.ID] = t
	}

	entries := make([]Entry, 0, len(saved))
	seen := make(map[string]struct{}, len(saved))
	for _, e := range saved {
		t, ok := byID[e.TaskID]
		if !ok || hasKey(seen, e.TaskID) {
			continue
		}
		seen[e.TaskID] = struct{}{}
		if days := e.Days(); days > 0 {
			t.EstimatedDays = days
		}
		entries = append(entries, e)
	}

	conflicts := DetectConflicts(entries)
	DeriveStatuses(sorted, entries, conflicts)
	plan := &Plan{
		Tasks:       sorted,
		Entries:     entries,
		Conflicts:   conflicts,
		Diagnostics: cycleDiagnostics(cycles),
	}
	plan.Diagnostics = append(plan.Diagnostics, danglingDiagnostics(entries, workers)...)
	return plan, nil
}
