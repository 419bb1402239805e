package repository

import (
	"context"

	"gorm.io/gorm"

	"foodorder-api/internal/domain/subscriptions"
)

type Subscriptions struct {
	db *gorm.DB
}

func NewSubscriptions(db *gorm.DB) *Subscriptions {
	return &Subscriptions{db: db}
}

func (r *Subscriptions) FindAllByUser(ctx context.Context, userID uint) ([]subscriptions.Subscription, error) {
	var list []subscriptions.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *Subscriptions) FindAllWithStatus(ctx context.Context, status subscriptions.Status) ([]subscriptions.Subscription, error) {
	var list []subscriptions.Subscription
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&list).Error
	return list, err
}

func (r *Subscriptions) Create(ctx context.Context, s *subscriptions.Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Subscriptions) Save(ctx context.Context, s *subscriptions.Subscription) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// CountByStatus backs the admin dashboard.
func (r *Subscriptions) CountByStatus(ctx context.Context) (map[subscriptions.Status]int64, error) {
	var rows []struct {
		Status subscriptions.Status
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&subscriptions.Subscription{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[subscriptions.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
