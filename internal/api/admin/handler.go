package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"foodorder-api/internal/api/respond"
	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/lib/daterange"
)

type PaymentReports interface {
	List(ctx context.Context, f billing.Filter) ([]billing.Payment, error)
	Report(ctx context.Context, f billing.Filter, loc *time.Location) (*billing.Report, error)
}

type SubscriptionAdmin interface {
	Upgrade(ctx context.Context, userID uint, plan subscriptions.Plan) (*subscriptions.Subscription, error)
	ExpireOverdue(ctx context.Context) (int, error)
}

type SubscriptionCounter interface {
	CountByStatus(ctx context.Context) (map[subscriptions.Status]int64, error)
}

type Handler struct {
	payments PaymentReports
	subs     SubscriptionAdmin
	counts   SubscriptionCounter
	loc      *time.Location
	log      *slog.Logger
}

func NewHandler(p PaymentReports, s SubscriptionAdmin, counts SubscriptionCounter, loc *time.Location, log *slog.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{payments: p, subs: s, counts: counts, loc: loc, log: log}
}

type AdminPayment struct {
	ID            uint            `json:"id"`
	Type          billing.Type    `json:"type"`
	Method        billing.Method  `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	OrderID       *uint           `json:"order_id,omitempty"`
	UserID        *uint           `json:"user_id,omitempty"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	PaidAt        string          `json:"paid_at"`
}

type AdminStats struct {
	Revenue       *billing.Report                `json:"revenue"`
	Subscriptions map[subscriptions.Status]int64 `json:"subscriptions"`
}

func (h *Handler) filter(c *gin.Context) (billing.Filter, error) {
	r, err := daterange.Parse(c.Query("from"), c.Query("to"), h.loc)
	if err != nil {
		return billing.Filter{}, err
	}
	f := billing.Filter{Range: r}
	if t := strings.ToUpper(strings.TrimSpace(c.Query("type"))); t != "" {
		switch billing.Type(t) {
		case billing.TypeOrder, billing.TypeSubscription:
			f.Type = billing.Type(t)
		default:
			return billing.Filter{}, apperr.BadRequest("type must be ORDER or SUBSCRIPTION")
		}
	}
	return f, nil
}

func (h *Handler) ListAllPayments(c *gin.Context) {
	const op = "admin.ListAllPayments"

	f, err := h.filter(c)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	payments, err := h.payments.List(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}

	result := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		result = append(result, AdminPayment{
			ID:            p.ID,
			Type:          p.Type,
			Method:        p.Method,
			Amount:        p.Amount,
			Status:        p.Status,
			OrderID:       p.OrderID,
			UserID:        p.UserID,
			TransactionID: p.TransactionID,
			PaidAt:        p.PaidAt.In(h.loc).Format("2006-01-02 15:04"),
		})
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	const op = "admin.GetAdminStats"

	f, err := h.filter(c)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	ctx := c.Request.Context()
	report, err := h.payments.Report(ctx, f, h.loc)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	counts, err := h.counts.CountByStatus(ctx)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}

	c.JSON(http.StatusOK, AdminStats{Revenue: report, Subscriptions: counts})
}

// UpgradeSubscription lets support staff grant a paid plan without a checkout.
func (h *Handler) UpgradeSubscription(c *gin.Context) {
	const op = "admin.UpgradeSubscription"

	userID, err := respond.IDParam(c, "userId")
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	var body struct {
		Plan string `json:"plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan is required"})
		return
	}
	plan, err := subscriptions.ParsePlan(body.Plan)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}

	sub, err := h.subs.Upgrade(c.Request.Context(), userID, plan)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) SweepSubscriptions(c *gin.Context) {
	n, err := h.subs.ExpireOverdue(c.Request.Context())
	if err != nil {
		respond.Error(c, h.log, "admin.SweepSubscriptions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": n})
}
