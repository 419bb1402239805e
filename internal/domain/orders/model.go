package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusDelivered = "DELIVERED"
	StatusCanceled  = "CANCELED"
)

// Order is the slice of the ordering domain that payments reference.
type Order struct {
	ID      uint            `gorm:"primaryKey"`
	StoreID uint            `gorm:"index;not null"`
	UserID  uint            `gorm:"index"`
	Total   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status  string          `gorm:"type:varchar(20);not null;default:'PENDING'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
