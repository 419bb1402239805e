package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminapi "foodorder-api/internal/api/admin"
	authapi "foodorder-api/internal/api/auth"
	"foodorder-api/internal/api/billing"
	storesapi "foodorder-api/internal/api/stores"
	stripewebhooks "foodorder-api/internal/api/stripewebhook"
	usersapi "foodorder-api/internal/api/users"
	"foodorder-api/internal/app/http/middleware"
	"foodorder-api/internal/domain/users"
)

type Handlers struct {
	Auth    *authapi.Handler
	Users   *usersapi.Handler
	Stores  *storesapi.Handler
	Billing *billing.Handler
	Admin   *adminapi.Handler
	Webhook *stripewebhooks.Handler

	// Authenticate and RequireSubscription are built by the caller so tests
	// can swap them.
	Authenticate        gin.HandlerFunc
	RequireSubscription gin.HandlerFunc
	Metrics             http.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.POST("/webhook", h.Webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	metrics := h.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metrics))

	r.GET("/stores/:id/status", h.Stores.GetStatus)
	r.GET("/s/:subdomain", h.Stores.GetBySubdomain)

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)

	// Authenticated
	auth := r.Group("/")
	auth.Use(h.Authenticate)
	auth.GET("/me", h.Users.GetCurrentUser)
	auth.GET("/subscription", h.Billing.GetSubscription)
	auth.POST("/subscription/trial", h.Billing.StartTrial)
	auth.POST("/subscription/checkout", h.Billing.CreateCheckoutSession)
	auth.GET("/payments", h.Billing.GetPaymentHistory)
	auth.POST("/change-password", h.Auth.ChangePassword)

	// Store owners
	owner := auth.Group("/")
	owner.Use(middleware.RequireRole(users.RoleAdmin, users.RoleSuperAdmin))
	owner.POST("/stores/:id/hours", h.Stores.CreateOpeningHour)
	owner.PUT("/hours/:id", h.Stores.UpdateOpeningHour)
	owner.DELETE("/hours/:id", h.Stores.DeleteOpeningHour)
	owner.PUT("/stores/:id/override", h.Stores.SetOverride)
	owner.DELETE("/stores/:id/override", h.Stores.ClearOverride)

	// Subscribed store owners
	subscribed := owner.Group("/")
	subscribed.Use(h.RequireSubscription)
	subscribed.POST("/orders/:id/payments", h.Billing.RecordOrderPayment)

	// Platform administration
	admin := r.Group("/admin")
	admin.Use(h.Authenticate, middleware.RequireRole(users.RoleSuperAdmin))
	admin.PUT("/stores/:id/suspension", h.Stores.SetSuspension)
	admin.POST("/stores/reevaluate", h.Stores.ReevaluateAll)
	admin.POST("/subscriptions/:userId/upgrade", h.Admin.UpgradeSubscription)
	admin.POST("/subscriptions/sweep", h.Admin.SweepSubscriptions)
	admin.GET("/payments", h.Admin.ListAllPayments)
	admin.GET("/stats", h.Admin.GetAdminStats)
}
