package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/domain/users"
	"foodorder-api/internal/lib/clock"
	"foodorder-api/internal/lib/sl"
)

type CurrentSubscription interface {
	Current(ctx context.Context, userID uint) (*subscriptions.Subscription, error)
}

// RequireActiveSubscription blocks store owners whose current subscription
// has lapsed. Platform administrators are not subscribers.
func RequireActiveSubscription(subs CurrentSubscription, clk clock.Clock, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") == users.RoleSuperAdmin {
			c.Next()
			return
		}

		sub, err := subs.Current(c.Request.Context(), c.GetUint("user_id"))
		if err != nil {
			log.Error("failed to load subscription", sl.Err(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if sub == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Subscription not found or expired"})
			return
		}
		if !sub.Active(clk.Now()) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "Your subscription has expired"})
			return
		}

		c.Next()
	}
}
