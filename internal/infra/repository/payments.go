package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/orders"
)

type Payments struct {
	db *gorm.DB
}

func NewPayments(db *gorm.DB) *Payments {
	return &Payments{db: db}
}

func (r *Payments) OrderExists(ctx context.Context, orderID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&orders.Order{}).
		Where("id = ?", orderID).
		Count(&count).Error
	return count > 0, err
}

// FindByOrder returns nil, nil when the order has no payment.
func (r *Payments) FindByOrder(ctx context.Context, orderID uint) (*billing.Payment, error) {
	var p billing.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Payments) Create(ctx context.Context, p *billing.Payment) error {
	err := r.db.WithContext(ctx).Create(p).Error
	return translate(err, "payment not found", "order already has a payment")
}

func (r *Payments) List(ctx context.Context, f billing.Filter) ([]billing.Payment, error) {
	var list []billing.Payment
	err := filtered(r.db.WithContext(ctx), f).
		Order("paid_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *Payments) Totals(ctx context.Context, f billing.Filter) ([]billing.TypeTotal, error) {
	var totals []billing.TypeTotal
	err := filtered(r.db.WithContext(ctx), f).
		Select("type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Order("type").
		Scan(&totals).Error
	return totals, err
}

func filtered(db *gorm.DB, f billing.Filter) *gorm.DB {
	q := db.Model(&billing.Payment{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if !f.Range.From.IsZero() {
		q = q.Where("paid_at >= ?", f.Range.From)
	}
	if !f.Range.Until.IsZero() {
		q = q.Where("paid_at < ?", f.Range.Until)
	}
	return q
}
