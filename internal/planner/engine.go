package planner

import "time"

// EarliestStart is the day after the latest end among the task's already
// assigned dependencies, or today when no such end lies after today.
// Unassigned dependencies do not hold a task back.
func EarliestStart(t *Task, byTask map[string]Entry, today time.Time) time.Time {
	var latest time.Time
	for _, dep := range t.Dependencies {
		e, ok := byTask[dep]
		if !ok || !e.EndDate.After(today) {
			continue
		}
		if e.EndDate.After(latest) {
			latest = e.EndDate
		}
	}
	if latest.IsZero() {
		return today
	}
	return AddDays(latest, 1)
}

// Load counts the entries of workerID that overlap [start, end).
func Load(entries []Entry, workerID string, start, end time.Time) int {
	n := 0
	for _, e := range entries {
		if e.WorkerID == workerID && Overlaps(start, end, e.StartDate, e.EndDate) {
			n++
		}
	}
	return n
}

// FindWorker returns the first worker, in roster order, who has every
// required skill and fewer overlapping entries than its capacity. It is
// first fit: ties go to the earlier roster position, not the idler worker.
func FindWorker(t *Task, workers []Worker, entries []Entry, start time.Time) (Worker, bool) {
	end := AddDays(start, t.EstimatedDays)
	for _, w := range workers {
		if !w.HasSkills(t.RequiredSkills) {
			continue
		}
		if Load(entries, w.ID, start, end) >= w.MaxConcurrent {
			continue
		}
		return w, true
	}
	return Worker{}, false
}

// Assign walks sorted tasks once and books each on the first suitable
// worker at its earliest start. Tasks nobody can take are left out of the
// result. Durations must already be positive.
func Assign(sorted []*Task, workers []Worker, today time.Time) []Entry {
	entries := make([]Entry, 0, len(sorted))
	byTask := make(map[string]Entry, len(sorted))
	for _, t := range sorted {
		start := EarliestStart(t, byTask, today)
		w, ok := FindWorker(t, workers, entries, start)
		if !ok {
			continue
		}
		e := Entry{
			TaskID:     t.ID,
			WorkerID:   w.ID,
			WorkerName: w.Name,
			StartDate:  start,
			EndDate:    AddDays(start, t.EstimatedDays),
		}
		entries = append(entries, e)
		byTask[t.ID] = e
	}
	return entries
}
