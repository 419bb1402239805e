package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/lib/clock"
)

type Events struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewEvents(db *gorm.DB, clk clock.Clock) *Events {
	return &Events{db: db, clock: clk}
}

// Claim inserts the event marker and reports whether this call inserted it.
func (r *Events) Claim(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	ev := billing.ProcessedEvent{
		Provider:    provider,
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: r.clock.Now().UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ev)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
