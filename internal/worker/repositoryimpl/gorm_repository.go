package repositoryimpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/weidustudio/studio/internal/worker"
	"github.com/weidustudio/studio/pkg/cerr"
)

type workerRow struct {
	ID            string         `gorm:"primaryKey;size:26"`
	Name          string         `gorm:"size:100;not null"`
	Role          string         `gorm:"size:100"`
	Skills        datatypes.JSON `gorm:"not null"`
	MaxConcurrent int            `gorm:"not null;default:1"`
	CreatedAt     time.Time      `gorm:"index"`
	UpdatedAt     time.Time
}

func (workerRow) TableName() string { return "workers" }

func toRow(w *worker.Worker) (*workerRow, error) {
	skills := w.Skills
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	return &workerRow{
		ID:            w.ID,
		Name:          w.Name,
		Role:          w.Role,
		Skills:        datatypes.JSON(raw),
		MaxConcurrent: w.MaxConcurrent,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}, nil
}

func (r *workerRow) toEntity() (*worker.Worker, error) {
	var skills []string
	if len(r.Skills) > 0 {
		if err := json.Unmarshal(r.Skills, &skills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skills of worker %s: %w", r.ID, err)
		}
	}
	return &worker.Worker{
		ID:            r.ID,
		Name:          r.Name,
		Role:          r.Role,
		Skills:        skills,
		MaxConcurrent: r.MaxConcurrent,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository migrates the workers table and returns a repository
// over it.
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&workerRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate workers: %w", err)
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) Create(ctx context.Context, w *worker.Worker) error {
	row, err := toRow(w)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", err)
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&workerRow{}).Where("id = ?", w.ID).Count(&n).Error; err != nil {
		return cerr.WrapDBError("read", "worker", err)
	}
	if n > 0 {
		return cerr.NewError(cerr.AlreadyExists, "worker already exists", nil)
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return cerr.WrapDBError("create", "worker", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*worker.Worker, error) {
	var row workerRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cerr.NewError(cerr.NotFound, "worker not found", err)
	}
	if err != nil {
		return nil, cerr.WrapDBError("read", "worker", err)
	}
	w, err := row.toEntity()
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	return w, nil
}

func (r *GormRepository) List(ctx context.Context) ([]*worker.Worker, error) {
	var rows []workerRow
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, cerr.WrapDBError("list", "workers", err)
	}
	out := make([]*worker.Worker, 0, len(rows))
	for i := range rows {
		w, err := rows[i].toEntity()
		if err != nil {
			return nil, cerr.NewError(cerr.Internal, "server error", err)
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *GormRepository) Update(ctx context.Context, w *worker.Worker) error {
	row, err := toRow(w)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", err)
	}
	res := r.db.WithContext(ctx).Model(&workerRow{}).Where("id = ?", w.ID).Updates(map[string]any{
		"name":           row.Name,
		"role":           row.Role,
		"skills":         row.Skills,
		"max_concurrent": row.MaxConcurrent,
		"updated_at":     row.UpdatedAt,
	})
	if res.Error != nil {
		return cerr.WrapDBError("update", "worker", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "worker not found", nil)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&workerRow{})
	if res.Error != nil {
		return cerr.WrapDBError("delete", "worker", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "worker not found", nil)
	}
	return nil
}
