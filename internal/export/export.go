// Package export renders saved schedules as spreadsheets.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/weidustudio/studio/internal/schedule"
)

const (
	SheetName   = "Schedule"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

var headers = []string{
	"Project", "Project ID", "Task ID", "Task type", "Worker", "Worker ID",
	"Start", "End", "Days", "Status", "Reminded",
}

// Source is the read side of the assignment store.
type Source interface {
	FindAssignments(ctx context.Context, f schedule.Filter) ([]*schedule.Assignment, error)
}

// WriteXLSX writes one row per assignment, in the given order, below a
// bold header row.
func WriteXLSX(w io.Writer, rows []*schedule.Assignment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for r, a := range rows {
		values := []any{
			a.ProjectTitle,
			a.ProjectID,
			a.TaskID,
			string(a.TaskType),
			a.WorkerName,
			a.WorkerID,
			a.StartDate.Format(dateLayout),
			a.EndDate.Format(dateLayout),
			a.EstimatedDays,
			string(a.Status),
			a.Notified,
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", last, 16); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Filename names the download for a project selection.
func Filename(projectIDs []string) string {
	switch len(projectIDs) {
	case 0:
		return "schedule.xlsx"
	case 1:
		return fmt.Sprintf("schedule-%s.xlsx", projectIDs[0])
	default:
		return fmt.Sprintf("schedule-%d-projects.xlsx", len(projectIDs))
	}
}
