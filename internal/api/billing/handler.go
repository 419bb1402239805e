package billing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/orders"
	"foodorder-api/internal/domain/stores"
	"foodorder-api/internal/domain/subscriptions"
	stripegw "foodorder-api/internal/infra/stripe"
)

type SubscriptionService interface {
	Current(ctx context.Context, userID uint) (*subscriptions.Subscription, error)
	StartTrial(ctx context.Context, userID uint) (*subscriptions.Subscription, error)
}

type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, userID uint, plan subscriptions.Plan) (*stripegw.CheckoutSession, error)
}

type PaymentService interface {
	CreatePayment(ctx context.Context, in billing.NewPayment) (*billing.Payment, error)
	ListByUser(ctx context.Context, userID uint) ([]billing.Payment, error)
}

type OrderFinder interface {
	FindByID(ctx context.Context, id uint) (*orders.Order, error)
}

type StoreAuthorizer interface {
	Authorize(ctx context.Context, actor stores.Actor, storeID uint) (*stores.Store, error)
}

type Handler struct {
	subs     SubscriptionService
	checkout CheckoutGateway
	payments PaymentService
	orders   OrderFinder
	stores   StoreAuthorizer
	log      *slog.Logger
}

func NewHandler(subs SubscriptionService, checkout CheckoutGateway, payments PaymentService, orders OrderFinder, stores StoreAuthorizer, log *slog.Logger) *Handler {
	return &Handler{subs: subs, checkout: checkout, payments: payments, orders: orders, stores: stores, log: log}
}

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}
