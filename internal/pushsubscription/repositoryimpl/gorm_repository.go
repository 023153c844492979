package repositoryimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/weidustudio/studio/internal/pushsubscription"
	"github.com/weidustudio/studio/pkg/cerr"
)

type subscriptionRow struct {
	ID        string `gorm:"primaryKey;size:26"`
	Endpoint  string `gorm:"size:512;not null;uniqueIndex"`
	P256dhKey string `gorm:"size:256;not null"`
	AuthKey   string `gorm:"size:256;not null"`
	UserAgent string `gorm:"size:512"`
	CreatedAt time.Time
}

func (subscriptionRow) TableName() string { return "push_subscriptions" }

func toRow(s *pushsubscription.Subscription) *subscriptionRow {
	return &subscriptionRow{
		ID:        s.ID,
		Endpoint:  s.Endpoint,
		P256dhKey: s.P256dhKey,
		AuthKey:   s.AuthKey,
		UserAgent: s.UserAgent,
		CreatedAt: s.CreatedAt,
	}
}

func (r *subscriptionRow) toEntity() *pushsubscription.Subscription {
	return &pushsubscription.Subscription{
		ID:        r.ID,
		Endpoint:  r.Endpoint,
		P256dhKey: r.P256dhKey,
		AuthKey:   r.AuthKey,
		UserAgent: r.UserAgent,
		CreatedAt: r.CreatedAt,
	}
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&subscriptionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate push subscriptions: %w", err)
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&subscriptionRow{}).Where(query, arg).Count(&n).Error; err != nil {
		return false, cerr.WrapDBError("read", "push subscription", err)
	}
	return n > 0, nil
}

func (r *GormRepository) Create(ctx context.Context, s *pushsubscription.Subscription) error {
	ok, err := r.exists(ctx, "id = ?", s.ID)
	if err != nil {
		return err
	}
	if ok {
		return cerr.NewError(cerr.AlreadyExists, "push subscription already exists", nil)
	}
	if err := r.db.WithContext(ctx).Create(toRow(s)).Error; err != nil {
		return cerr.WrapDBError("create", "push subscription", err)
	}
	return nil
}

func (r *GormRepository) first(ctx context.Context, query string, arg any) (*pushsubscription.Subscription, error) {
	var row subscriptionRow
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cerr.NewError(cerr.NotFound, "push subscription not found", err)
	}
	if err != nil {
		return nil, cerr.WrapDBError("read", "push subscription", err)
	}
	return row.toEntity(), nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*pushsubscription.Subscription, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormRepository) FindByEndpoint(ctx context.Context, endpoint string) (*pushsubscription.Subscription, error) {
	return r.first(ctx, "endpoint = ?", endpoint)
}

func (r *GormRepository) List(ctx context.Context) ([]*pushsubscription.Subscription, error) {
	var rows []subscriptionRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, cerr.WrapDBError("list", "push subscriptions", err)
	}
	out := make([]*pushsubscription.Subscription, len(rows))
	for i := range rows {
		out[i] = rows[i].toEntity()
	}
	return out, nil
}

func (r *GormRepository) Update(ctx context.Context, s *pushsubscription.Subscription) error {
	ok, err := r.exists(ctx, "id = ?", s.ID)
	if err != nil {
		return err
	}
	if !ok {
		return cerr.NewError(cerr.NotFound, "push subscription not found", nil)
	}
	err = r.db.WithContext(ctx).Model(&subscriptionRow{}).Where("id = ?", s.ID).Updates(map[string]any{
		"endpoint":   s.Endpoint,
		"p256dh_key": s.P256dhKey,
		"auth_key":   s.AuthKey,
		"user_agent": s.UserAgent,
	}).Error
	if err != nil {
		return cerr.WrapDBError("update", "push subscription", err)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&subscriptionRow{})
	if res.Error != nil {
		return cerr.WrapDBError("delete", "push subscription", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "push subscription not found", nil)
	}
	return nil
}
