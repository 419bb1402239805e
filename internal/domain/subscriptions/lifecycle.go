// Package subscriptions drives a user's subscription through
// TRIAL, MONTHLY/YEARLY and EXPIRED.
package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/lib/clock"
	"foodorder-api/internal/lib/sl"
	"foodorder-api/internal/metrics"
)

var ErrEventAlreadyProcessed = errors.New("event already processed")

// Repository persists subscriptions. FindAllByUser returns newest first.
type Repository interface {
	FindAllByUser(ctx context.Context, userID uint) ([]Subscription, error)
	FindAllWithStatus(ctx context.Context, status Status) ([]Subscription, error)
	Create(ctx context.Context, s *Subscription) error
	Save(ctx context.Context, s *Subscription) error
}

type PaymentRecorder interface {
	CreatePayment(ctx context.Context, in billing.NewPayment) (*billing.Payment, error)
}

// EventLedger remembers external events. Claim returns false when the event
// was claimed before.
type EventLedger interface {
	Claim(ctx context.Context, provider, eventID, eventType string) (bool, error)
}

// Tx groups the collaborators bound to one database transaction.
type Tx struct {
	Subscriptions Repository
	Payments      PaymentRecorder
	Events        EventLedger
}

// UnitOfWork runs fn in a transaction, rolling back when fn returns an error.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}

// Confirmation describes a settled checkout reported by the payment gateway.
type Confirmation struct {
	Provider      string
	EventID       string
	EventType     string
	UserID        uint
	Plan          Plan
	Amount        decimal.Decimal
	Method        billing.Method
	TransactionID string
}

type Service struct {
	repo    Repository
	uow     UnitOfWork
	clock   clock.Clock
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewService(repo Repository, uow UnitOfWork, clk clock.Clock, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{repo: repo, uow: uow, clock: clk, metrics: m, log: log}
}

// StartTrial creates a 30 day trial for users that never had a subscription.
// Otherwise the newest existing row is returned unchanged.
func (s *Service) StartTrial(ctx context.Context, userID uint) (*Subscription, error) {
	const op = "subscriptions.StartTrial"

	all, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(all) > 0 {
		return &all[0], nil
	}

	now := s.clock.Now()
	sub := &Subscription{
		UserID:    userID,
		Status:    StatusTrial,
		ExpiresAt: now.AddDate(0, 0, TrialDays),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("trial started", slog.Uint64("user_id", uint64(userID)), slog.Time("expires_at", sub.ExpiresAt))
	return sub, nil
}

// Current returns the subscription that governs the user's access, or nil
// when the user has none.
func (s *Service) Current(ctx context.Context, userID uint) (*Subscription, error) {
	sub, expired, err := s.current(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if expired {
		s.metrics.SubscriptionExpired("lazy", 1)
	}
	return sub, nil
}

func (s *Service) current(ctx context.Context, repo Repository, userID uint) (*Subscription, bool, error) {
	const op = "subscriptions.Current"

	all, err := repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if len(all) == 0 {
		return nil, false, nil
	}

	now := s.clock.Now()
	for i := range all {
		if all[i].Active(now) {
			return &all[i], false, nil
		}
	}

	newest := &all[0]
	if !newest.LapsedAt(now) {
		return newest, false, nil
	}

	newest.Status = StatusExpired
	if err := repo.Save(ctx, newest); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription expired on read",
		slog.Uint64("subscription_id", uint64(newest.ID)),
		slog.Uint64("user_id", uint64(userID)),
	)
	return newest, true, nil
}

// Upgrade moves the current subscription to a paid plan. The new period
// starts now regardless of time left on the previous one.
func (s *Service) Upgrade(ctx context.Context, userID uint, plan Plan) (*Subscription, error) {
	sub, expired, err := s.upgrade(ctx, s.repo, userID, plan)
	if expired {
		s.metrics.SubscriptionExpired("lazy", 1)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.SubscriptionUpgraded(string(plan))
	return sub, nil
}

func (s *Service) upgrade(ctx context.Context, repo Repository, userID uint, plan Plan) (*Subscription, bool, error) {
	const op = "subscriptions.Upgrade"

	if plan != PlanMonthly && plan != PlanYearly {
		return nil, false, apperr.BadRequest("plan must be MONTHLY or YEARLY")
	}

	sub, expired, err := s.current(ctx, repo, userID)
	if err != nil {
		return nil, expired, err
	}
	if sub == nil {
		return nil, expired, apperr.NotFound("subscription not found")
	}

	sub.Status = plan.Status()
	sub.ExpiresAt = plan.ExpiresFrom(s.clock.Now())
	if err := repo.Save(ctx, sub); err != nil {
		return nil, expired, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription upgraded",
		slog.Uint64("subscription_id", uint64(sub.ID)),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("plan", string(plan)),
		slog.Time("expires_at", sub.ExpiresAt),
	)
	return sub, expired, nil
}

// ExpireOverdue moves overdue trials to EXPIRED and returns how many changed.
// A row that fails to save is logged and skipped; the failures are joined
// into the returned error.
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	const op = "subscriptions.ExpireOverdue"

	trials, err := s.repo.FindAllWithStatus(ctx, StatusTrial)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	count := 0
	var errs []error
	for i := range trials {
		sub := &trials[i]
		if !sub.SweepDue(now) {
			continue
		}
		sub.Status = StatusExpired
		if err := s.repo.Save(ctx, sub); err != nil {
			s.log.Error("failed to expire trial",
				slog.Uint64("subscription_id", uint64(sub.ID)),
				sl.Err(err),
			)
			errs = append(errs, fmt.Errorf("subscription %d: %w", sub.ID, err))
			continue
		}
		count++
	}

	s.metrics.SubscriptionExpired("sweep", count)
	if count > 0 {
		s.log.Info("expired overdue trials", slog.Int("count", count))
	}
	if len(errs) > 0 {
		return count, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	return count, nil
}

// ConfirmPayment applies a settled checkout: it claims the gateway event,
// upgrades the subscription and records the payment in one transaction.
// A zero amount upgrades without a payment record and returns a nil payment.
// A redelivered event returns ErrEventAlreadyProcessed without side effects.
func (s *Service) ConfirmPayment(ctx context.Context, in Confirmation) (*Subscription, *billing.Payment, error) {
	const op = "subscriptions.ConfirmPayment"

	if in.EventID == "" {
		return nil, nil, apperr.BadRequest("missing event id")
	}
	if in.UserID == 0 {
		return nil, nil, apperr.BadRequest("missing user id")
	}

	var (
		sub     *Subscription
		payment *billing.Payment
		expired bool
	)
	err := s.uow.Do(ctx, func(tx Tx) error {
		claimed, err := tx.Events.Claim(ctx, in.Provider, in.EventID, in.EventType)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrEventAlreadyProcessed
		}

		sub, expired, err = s.upgrade(ctx, tx.Subscriptions, in.UserID, in.Plan)
		if err != nil {
			return err
		}

		// Fully discounted checkouts settle without money changing hands.
		if in.Amount.IsZero() {
			return nil
		}

		userID := in.UserID
		payment, err = tx.Payments.CreatePayment(ctx, billing.NewPayment{
			Type:          billing.TypeSubscription,
			Method:        in.Method,
			Amount:        in.Amount,
			UserID:        &userID,
			TransactionID: in.TransactionID,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrEventAlreadyProcessed) {
			s.log.Info("duplicate payment confirmation", slog.String("event_id", in.EventID))
			return nil, nil, ErrEventAlreadyProcessed
		}
		s.log.Error("payment confirmation rolled back",
			slog.String("event_id", in.EventID),
			slog.Uint64("user_id", uint64(in.UserID)),
			sl.Err(err),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if expired {
		s.metrics.SubscriptionExpired("lazy", 1)
	}
	s.metrics.SubscriptionUpgraded(string(in.Plan))
	if payment == nil {
		s.log.Info("upgraded without payment record",
			slog.String("event_id", in.EventID),
			slog.Uint64("user_id", uint64(in.UserID)),
		)
		return sub, nil, nil
	}
	s.metrics.PaymentRecorded(string(payment.Type))
	return sub, payment, nil
}
