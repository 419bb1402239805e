package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder-api/internal/api/respond"
	"foodorder-api/internal/domain/access"
	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/domain/users"
	"foodorder-api/internal/lib/clock"
)

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*users.User, error)
}

type SubscriptionReader interface {
	Current(ctx context.Context, userID uint) (*subscriptions.Subscription, error)
}

type Handler struct {
	users UserFinder
	subs  SubscriptionReader
	clock clock.Clock
	log   *slog.Logger
}

func NewHandler(u UserFinder, s SubscriptionReader, clk clock.Clock, log *slog.Logger) *Handler {
	return &Handler{users: u, subs: s, clock: clk, log: log}
}

// GetCurrentUser returns the caller's profile with subscription and access
// summary. Like GET /subscription it expires an overdue subscription.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	const op = "users.GetCurrentUser"

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	sub, err := h.subs.Current(ctx, userID)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}

	policy := access.ComputePolicy(h.clock.Now(), sub)
	c.JSON(http.StatusOK, MeResponse{
		User:         BuildUserDTO(user),
		Subscription: BuildSubscriptionDTO(sub),
		Access: AccessDTO{
			State:        string(policy.State),
			Capabilities: policy.Capabilities,
			DaysLeft:     policy.DaysLeft,
		},
	})
}
