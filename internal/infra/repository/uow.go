package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/lib/clock"
)

// UnitOfWork binds the subscription, payment and event repositories to a
// single gorm transaction.
type UnitOfWork struct {
	db    *gorm.DB
	clock clock.Clock
	log   *slog.Logger
}

func NewUnitOfWork(db *gorm.DB, clk clock.Clock, log *slog.Logger) *UnitOfWork {
	return &UnitOfWork{db: db, clock: clk, log: log}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(tx subscriptions.Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Metrics are reported by the caller once the transaction commits.
		return fn(subscriptions.Tx{
			Subscriptions: NewSubscriptions(tx),
			Payments:      billing.NewRecorder(NewPayments(tx), u.clock, nil, u.log),
			Events:        NewEvents(tx, u.clock),
		})
	})
}
