package subscriptions

import (
	"strings"
	"time"

	"foodorder-api/internal/apperr"
)

type Status string

const (
	StatusTrial   Status = "TRIAL"
	StatusMonthly Status = "MONTHLY"
	StatusYearly  Status = "YEARLY"
	StatusExpired Status = "EXPIRED"
)

// Plan is a paid tier a subscription can be upgraded to.
type Plan string

const (
	PlanMonthly Plan = "MONTHLY"
	PlanYearly  Plan = "YEARLY"
)

const TrialDays = 30

func ParsePlan(raw string) (Plan, error) {
	switch Plan(strings.ToUpper(strings.TrimSpace(raw))) {
	case PlanMonthly:
		return PlanMonthly, nil
	case PlanYearly:
		return PlanYearly, nil
	}
	return "", apperr.BadRequest("plan must be MONTHLY or YEARLY")
}

// ExpiresFrom returns the end of a billing period starting at now.
func (p Plan) ExpiresFrom(now time.Time) time.Time {
	if p == PlanYearly {
		return now.AddDate(1, 0, 0)
	}
	return now.AddDate(0, 1, 0)
}

func (p Plan) Status() Status {
	if p == PlanYearly {
		return StatusYearly
	}
	return StatusMonthly
}

type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Status    Status    `gorm:"type:varchar(20);not null;index" json:"status"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether s grants access at now.
func (s *Subscription) Active(now time.Time) bool {
	return s.Status != StatusExpired && s.ExpiresAt.After(now)
}

// LapsedAt reports whether s should be moved to EXPIRED on read.
func (s *Subscription) LapsedAt(now time.Time) bool {
	return s.Status != StatusExpired && !s.ExpiresAt.After(now)
}

// SweepDue reports whether the periodic sweep expires s. Paid plans are
// only expired on read.
func (s *Subscription) SweepDue(now time.Time) bool {
	return s.Status == StatusTrial && s.ExpiresAt.Before(now)
}
