package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/lib/clock"
	"foodorder-api/internal/lib/daterange"
	"foodorder-api/internal/metrics"
)

// Repository persists payments. Create returns an apperr Conflict when the
// order already has a payment.
type Repository interface {
	OrderExists(ctx context.Context, orderID uint) (bool, error)
	FindByOrder(ctx context.Context, orderID uint) (*Payment, error)
	Create(ctx context.Context, p *Payment) error
	List(ctx context.Context, f Filter) ([]Payment, error)
	Totals(ctx context.Context, f Filter) ([]TypeTotal, error)
}

type NewPayment struct {
	Type          Type
	Method        Method
	Amount        decimal.Decimal
	OrderID       *uint
	UserID        *uint
	TransactionID string
}

type Filter struct {
	Type   Type
	UserID *uint
	Range  daterange.Range
}

type TypeTotal struct {
	Type  Type            `json:"type"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type Recorder struct {
	repo    Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewRecorder(repo Repository, clk clock.Clock, m *metrics.Metrics, log *slog.Logger) *Recorder {
	return &Recorder{repo: repo, clock: clk, metrics: m, log: log}
}

func (r *Recorder) CreatePayment(ctx context.Context, in NewPayment) (*Payment, error) {
	const op = "billing.CreatePayment"

	if !in.Amount.IsPositive() {
		return nil, apperr.BadRequest("amount must be greater than zero")
	}
	if !in.Method.Valid() {
		return nil, apperr.BadRequest("unknown payment method")
	}

	switch in.Type {
	case TypeOrder:
		if in.OrderID == nil || *in.OrderID == 0 {
			return nil, apperr.BadRequest("order payments require an order")
		}
		exists, err := r.repo.OrderExists(ctx, *in.OrderID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return nil, apperr.NotFound("order not found")
		}
		existing, err := r.repo.FindByOrder(ctx, *in.OrderID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if existing != nil {
			return nil, apperr.Conflict("order already has a payment")
		}
	case TypeSubscription:
		if in.UserID == nil || *in.UserID == 0 {
			return nil, apperr.BadRequest("subscription payments require a user")
		}
		if in.OrderID != nil {
			return nil, apperr.BadRequest("subscription payments cannot reference an order")
		}
	default:
		return nil, apperr.BadRequest("unknown payment type")
	}

	p := &Payment{
		Amount:  in.Amount.Round(2),
		Method:  in.Method,
		Type:    in.Type,
		Status:  StatusPaid,
		OrderID: in.OrderID,
		UserID:  in.UserID,
		PaidAt:  r.clock.Now(),
	}
	if tx := strings.TrimSpace(in.TransactionID); tx != "" {
		p.TransactionID = &tx
	}

	if err := r.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.metrics.PaymentRecorded(string(p.Type))
	r.log.Info("payment recorded",
		slog.Uint64("payment_id", uint64(p.ID)),
		slog.String("type", string(p.Type)),
		slog.String("amount", p.Amount.StringFixed(2)),
	)
	return p, nil
}

func (r *Recorder) ListByUser(ctx context.Context, userID uint) ([]Payment, error) {
	return r.repo.List(ctx, Filter{UserID: &userID})
}

func (r *Recorder) List(ctx context.Context, f Filter) ([]Payment, error) {
	return r.repo.List(ctx, f)
}

// Report summarises revenue per payment type for the filter's range.
type Report struct {
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
	ByType     []TypeTotal     `json:"by_type"`
	LastThirty decimal.Decimal `json:"last_30_days"`
}

func (r *Recorder) Report(ctx context.Context, f Filter, loc *time.Location) (*Report, error) {
	if loc == nil {
		loc = time.UTC
	}
	totals, err := r.repo.Totals(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("billing.Report: %w", err)
	}
	recent, err := r.repo.Totals(ctx, Filter{Type: f.Type, Range: daterange.LastDays(r.clock.Now().In(loc), 30)})
	if err != nil {
		return nil, fmt.Errorf("billing.Report: %w", err)
	}

	rep := &Report{Total: decimal.Zero, LastThirty: decimal.Zero, ByType: totals}
	for _, t := range totals {
		rep.Total = rep.Total.Add(t.Total)
		rep.Count += t.Count
	}
	for _, t := range recent {
		rep.LastThirty = rep.LastThirty.Add(t.Total)
	}
	return rep, nil
}
