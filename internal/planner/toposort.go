package planner

import (
	"errors"
	"fmt"

	"github.com/weidustudio/studio/pkg/cerr"
)

var (
	ErrDuplicateTask     = errors.New("duplicate task")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrInvalidDuration   = errors.New("invalid duration")
)

// Cycle lists the tasks of one dependency loop in stack order, from the
// task that was revisited to the task that pointed back at it.
type Cycle struct {
	TaskIDs []string
}

// Validate rejects a batch the sorter cannot make sense of.
func Validate(tasks []*Task) error {
	ids := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := ids[t.ID]; dup {
			return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("task %s appears more than once", t.ID), ErrDuplicateTask)
		}
		ids[t.ID] = struct{}{}
		if t.EstimatedDays < 1 {
			return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("task %s must last at least one day", t.ID), ErrInvalidDuration)
		}
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := ids[dep]; !ok {
				return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("task %s depends on unknown task %s", t.ID, dep), ErrUnknownDependency)
			}
		}
	}
	return nil
}

const (
	unvisited = iota
	onStack
	finished
)

type frame struct {
	task *Task
	next int
}

// Sort orders tasks so that each one follows its dependencies (depth-first
// post-order). Roots are taken in input order and dependencies in declared
// order, so unrelated tasks keep their relative order. A dependency that
// is still on the stack closes a cycle: the cycle is recorded and that
// edge is skipped. Every task appears in the output exactly once.
func Sort(tasks []*Task) ([]*Task, []Cycle, error) {
	if err := Validate(tasks); err != nil {
		return nil, nil, err
	}
	byID := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	state := make(map[string]int, len(tasks))
	sorted := make([]*Task, 0, len(tasks))
	var cycles []Cycle

	for _, root := range tasks {
		if state[root.ID] != unvisited {
			continue
		}
		state[root.ID] = onStack
		stack := []frame{{task: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.task.Dependencies) {
				state[top.task.ID] = finished
				sorted = append(sorted, top.task)
				stack = stack[:len(stack)-1]
				continue
			}
			depID := top.task.Dependencies[top.next]
			top.next++
			switch state[depID] {
			case unvisited:
				state[depID] = onStack
				stack = append(stack, frame{task: byID[depID]})
			case onStack:
				cycles = append(cycles, Cycle{TaskIDs: cycleFrom(stack, depID)})
			}
		}
	}
	return sorted, cycles, nil
}

func cycleFrom(stack []frame, id string) []string {
	start := 0
	for i, f := range stack {
		if f.task.ID == id {
			start = i
			break
		}
	}
	ids := make([]string, 0, len(stack)-start)
	for _, f := range stack[start:] {
		ids = append(ids, f.task.ID)
	}
	return ids
}
