package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeOrder        Type = "ORDER"
	TypeSubscription Type = "SUBSCRIPTION"
)

type Method string

const (
	MethodCash       Method = "CASH"
	MethodCreditCard Method = "CREDIT_CARD"
	MethodDebitCard  Method = "DEBIT_CARD"
	MethodPix        Method = "PIX"
	MethodStripe     Method = "STRIPE"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodPix, MethodStripe:
		return true
	}
	return false
}

const StatusPaid = "paid"

type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method        Method          `gorm:"type:varchar(20);not null" json:"method"`
	Type          Type            `gorm:"type:varchar(20);not null;index" json:"type"`
	Status        string          `gorm:"type:varchar(20);not null;default:'paid'" json:"status"`
	OrderID       *uint           `gorm:"uniqueIndex:idx_payments_order_id" json:"order_id,omitempty"`
	UserID        *uint           `gorm:"index" json:"user_id,omitempty"`
	TransactionID *string         `gorm:"index" json:"transaction_id,omitempty"`
	PaidAt        time.Time       `gorm:"index" json:"paid_at"`
	CreatedAt     time.Time       `json:"created_at"`
}
