package repositoryimpl

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/weidustudio/studio/internal/database"
	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/internal/schedule"
	"github.com/weidustudio/studio/pkg/cerr"
)

type assignmentRow struct {
	ID            uint           `gorm:"primaryKey"`
	ProjectID     string         `gorm:"size:64;not null;index:idx_assignment_project_task,unique"`
	TaskID        string         `gorm:"size:128;not null;index:idx_assignment_project_task,unique"`
	TaskType      string         `gorm:"size:64"`
	ProjectTitle  string         `gorm:"size:200"`
	WorkerID      string         `gorm:"size:64"`
	WorkerName    string         `gorm:"size:100"`
	StartDate     datatypes.Date `gorm:"index"`
	EndDate       datatypes.Date
	Status        string `gorm:"size:16"`
	EstimatedDays int
	Notified      bool `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

func (assignmentRow) TableName() string { return "schedule_assignments" }

func toRow(a *schedule.Assignment) *assignmentRow {
	return &assignmentRow{
		ProjectID:     a.ProjectID,
		TaskID:        a.TaskID,
		TaskType:      string(a.TaskType),
		ProjectTitle:  a.ProjectTitle,
		WorkerID:      a.WorkerID,
		WorkerName:    a.WorkerName,
		StartDate:     datatypes.Date(database.CivilDate(a.StartDate)),
		EndDate:       datatypes.Date(database.CivilDate(a.EndDate)),
		Status:        string(a.Status),
		EstimatedDays: a.EstimatedDays,
		Notified:      a.Notified,
	}
}

func (r *assignmentRow) toEntity(loc *time.Location) *schedule.Assignment {
	return &schedule.Assignment{
		ProjectID:     r.ProjectID,
		TaskID:        r.TaskID,
		TaskType:      planner.TaskType(r.TaskType),
		ProjectTitle:  r.ProjectTitle,
		WorkerID:      r.WorkerID,
		WorkerName:    r.WorkerName,
		StartDate:     database.InLocation(time.Time(r.StartDate), loc),
		EndDate:       database.InLocation(time.Time(r.EndDate), loc),
		Status:        planner.Status(r.Status),
		EstimatedDays: r.EstimatedDays,
		Notified:      r.Notified,
	}
}

type GormRepository struct {
	db  *gorm.DB
	loc *time.Location
}

func NewGormRepository(db *gorm.DB, loc *time.Location) (*GormRepository, error) {
	if err := db.AutoMigrate(&assignmentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schedule assignments: %w", err)
	}
	return &GormRepository{db: db, loc: loc}, nil
}

// Replace deletes and inserts inside one transaction, so readers see
// either the old or the new schedule of a project set.
func (r *GormRepository) Replace(ctx context.Context, projectIDs []string, rows []*schedule.Assignment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := append([]string(nil), projectIDs...)
		for _, a := range rows {
			if !slices.Contains(ids, a.ProjectID) {
				ids = append(ids, a.ProjectID)
			}
		}
		if len(ids) > 0 {
			if err := tx.Where("project_id IN ?", ids).Delete(&assignmentRow{}).Error; err != nil {
				return err
			}
		}
		if len(rows) == 0 {
			return nil
		}
		records := make([]*assignmentRow, len(rows))
		for i, a := range rows {
			records[i] = toRow(a)
		}
		return tx.Create(records).Error
	})
	if err != nil {
		return cerr.WrapDBError("replace", "schedule", err)
	}
	return nil
}

func (r *GormRepository) Find(ctx context.Context, f schedule.Filter) ([]*schedule.Assignment, error) {
	q := r.db.WithContext(ctx).Model(&assignmentRow{})
	if len(f.ProjectIDs) > 0 {
		q = q.Where("project_id IN ?", f.ProjectIDs)
	}
	if len(f.TaskIDs) > 0 {
		q = q.Where("task_id IN ?", f.TaskIDs)
	}
	if f.StartDate != nil {
		q = q.Where("start_date = ?", datatypes.Date(database.CivilDate(*f.StartDate)))
	}
	if f.Notified != nil {
		q = q.Where("notified = ?", *f.Notified)
	}
	var rows []assignmentRow
	if err := q.Order("start_date, task_id").Find(&rows).Error; err != nil {
		return nil, cerr.WrapDBError("list", "schedule", err)
	}
	out := make([]*schedule.Assignment, len(rows))
	for i := range rows {
		out[i] = rows[i].toEntity(r.loc)
	}
	return out, nil
}

func (r *GormRepository) MarkNotified(ctx context.Context, projectID, taskID string) error {
	res := r.db.WithContext(ctx).Model(&assignmentRow{}).
		Where("project_id = ? AND task_id = ?", projectID, taskID).
		Update("notified", true)
	if res.Error != nil {
		return cerr.WrapDBError("update", "schedule", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "assignment not found", nil)
	}
	return nil
}
