package planner

import "fmt"

// DetectConflicts reports every pair of overlapping entries booked on the
// same worker. Workers are visited in order of first appearance and pairs
// in entry order, so the output is a pure function of entries.
func DetectConflicts(entries []Entry) []Conflict {
	var order []string
	groups := make(map[string][]Entry)
	for _, e := range entries {
		if _, ok := groups[e.WorkerID]; !ok {
			order = append(order, e.WorkerID)
		}
		groups[e.WorkerID] = append(groups[e.WorkerID], e)
	}

	conflicts := []Conflict{}
	for _, workerID := range order {
		group := groups[workerID]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if !Overlaps(a.StartDate, a.EndDate, b.StartDate, b.EndDate) {
					continue
				}
				conflicts = append(conflicts, Conflict{
					Type:     ConflictTypeWorker,
					Task1ID:  a.TaskID,
					Task2ID:  b.TaskID,
					WorkerID: workerID,
					Message:  fmt.Sprintf("worker %s is booked on %s and %s at the same time", displayName(a), a.TaskID, b.TaskID),
				})
			}
		}
	}
	return conflicts
}

func displayName(e Entry) string {
	if e.WorkerName != "" {
		return e.WorkerName
	}
	return e.WorkerID
}

// DeriveStatuses sets each task's status from the entries and conflicts:
// conflict if any conflict names it, scheduled if it has an entry, pending
// otherwise.
func DeriveStatuses(tasks []*Task, entries []Entry, conflicts []Conflict) {
	assigned := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		assigned[e.TaskID] = struct{}{}
	}
	clashing := make(map[string]struct{}, 2*len(conflicts))
	for _, c := range conflicts {
		clashing[c.Task1ID] = struct{}{}
		clashing[c.Task2ID] = struct{}{}
	}
	for _, t := range tasks {
		switch _, isAssigned := assigned[t.ID]; {
		case !isAssigned:
			t.Status = StatusPending
		case hasKey(clashing, t.ID):
			t.Status = StatusConflict
		default:
			t.Status = StatusScheduled
		}
	}
}

func hasKey(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}
