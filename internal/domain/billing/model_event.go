package billing

import "time"

// ProcessedEvent marks an external webhook event as handled so redeliveries
// are acknowledged without repeating their side effects.
type ProcessedEvent struct {
	ID          uint   `gorm:"primaryKey"`
	Provider    string `gorm:"type:varchar(20);not null;uniqueIndex:idx_processed_events_provider_event,priority:1"`
	EventID     string `gorm:"type:varchar(191);not null;uniqueIndex:idx_processed_events_provider_event,priority:2"`
	EventType   string `gorm:"type:varchar(100);not null"`
	ProcessedAt time.Time
}
