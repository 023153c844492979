package repositoryimpl

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/weidustudio/studio/internal/project"
	"github.com/weidustudio/studio/pkg/cerr"
)

type projectRow struct {
	ID          string `gorm:"primaryKey;size:26"`
	Title       string `gorm:"size:200"`
	Category    string `gorm:"size:100"`
	Location    string `gorm:"size:200"`
	Area        string `gorm:"size:50"`
	Description string
	Published   bool
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (projectRow) TableName() string { return "projects" }

func toRow(p *project.Project) *projectRow {
	return &projectRow{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Location:    p.Location,
		Area:        p.Area,
		Description: p.Description,
		Published:   p.Published,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r *projectRow) toEntity() *project.Project {
	return &project.Project{
		ID:          r.ID,
		Title:       r.Title,
		Category:    r.Category,
		Location:    r.Location,
		Area:        r.Area,
		Description: r.Description,
		Published:   r.Published,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&projectRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate projects: %w", err)
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) Create(ctx context.Context, p *project.Project) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&projectRow{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
		return cerr.WrapDBError("read", "project", err)
	}
	if n > 0 {
		return cerr.NewError(cerr.AlreadyExists, "project already exists", nil)
	}
	if err := r.db.WithContext(ctx).Create(toRow(p)).Error; err != nil {
		return cerr.WrapDBError("create", "project", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	var row projectRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cerr.NewError(cerr.NotFound, "project not found", err)
	}
	if err != nil {
		return nil, cerr.WrapDBError("read", "project", err)
	}
	return row.toEntity(), nil
}

func (r *GormRepository) List(ctx context.Context, limit, offset int) ([]*project.Project, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&projectRow{}).Count(&total).Error; err != nil {
		return nil, 0, cerr.WrapDBError("count", "projects", err)
	}
	if limit <= 0 {
		limit = math.MaxInt32
	}
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Offset(offset)
	var rows []projectRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, cerr.WrapDBError("list", "projects", err)
	}
	out := make([]*project.Project, len(rows))
	for i := range rows {
		out[i] = rows[i].toEntity()
	}
	return out, int(total), nil
}

func (r *GormRepository) Update(ctx context.Context, p *project.Project) error {
	res := r.db.WithContext(ctx).Model(&projectRow{}).Where("id = ?", p.ID).Updates(map[string]any{
		"title":       p.Title,
		"category":    p.Category,
		"location":    p.Location,
		"area":        p.Area,
		"description": p.Description,
		"published":   p.Published,
		"updated_at":  p.UpdatedAt,
	})
	if res.Error != nil {
		return cerr.WrapDBError("update", "project", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "project not found", nil)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&projectRow{})
	if res.Error != nil {
		return cerr.WrapDBError("delete", "project", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "project not found", nil)
	}
	return nil
}
