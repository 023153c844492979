package schedule

import (
	"time"

	"github.com/weidustudio/studio/internal/planner"
)

// Assignment is the stored form of a schedule entry, denormalised with the
// task fields needed to show it without regenerating the plan.
type Assignment struct {
	ProjectID     string           `yaml:"project_id" json:"project_id"`
	TaskID        string           `yaml:"task_id" json:"task_id"`
	TaskType      planner.TaskType `yaml:"task_type" json:"task_type"`
	ProjectTitle  string           `yaml:"project_title" json:"project_title"`
	WorkerID      string           `yaml:"worker_id" json:"worker_id"`
	WorkerName    string           `yaml:"worker_name" json:"worker_name"`
	StartDate     time.Time        `yaml:"start_date" json:"start_date"`
	EndDate       time.Time        `yaml:"end_date" json:"end_date"`
	Status        planner.Status   `yaml:"status" json:"status"`
	EstimatedDays int              `yaml:"estimated_days" json:"estimated_days"`
	Notified      bool             `yaml:"notified" json:"notified"`
}

func (a *Assignment) Entry() planner.Entry {
	return planner.Entry{
		TaskID:     a.TaskID,
		WorkerID:   a.WorkerID,
		WorkerName: a.WorkerName,
		StartDate:  a.StartDate,
		EndDate:    a.EndDate,
	}
}

// AssignmentsFromPlan flattens plan into storable rows, one per entry.
// Entries whose task is unknown or has no project are dropped.
func AssignmentsFromPlan(plan *planner.Plan) []*Assignment {
	rows := make([]*Assignment, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		t, ok := plan.Task(e.TaskID)
		if !ok || t.ProjectID == "" {
			continue
		}
		rows = append(rows, &Assignment{
			ProjectID:     t.ProjectID,
			TaskID:        e.TaskID,
			TaskType:      t.TaskType,
			ProjectTitle:  t.ProjectTitle,
			WorkerID:      e.WorkerID,
			WorkerName:    e.WorkerName,
			StartDate:     e.StartDate,
			EndDate:       e.EndDate,
			Status:        t.Status,
			EstimatedDays: t.EstimatedDays,
		})
	}
	return rows
}
