package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder-api/internal/api/respond"
	"foodorder-api/internal/domain/subscriptions"
)

// CreateCheckoutSession starts a Stripe checkout for a paid plan. The
// subscription changes only when the completion webhook arrives.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	const op = "billing.CreateCheckoutSession"

	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var body struct {
		Plan string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Plan == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid plan"})
		return
	}
	plan, err := subscriptions.ParsePlan(body.Plan)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}

	ctx := c.Request.Context()
	sub, err := h.subs.Current(ctx, userID)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	if sub == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Start a trial before subscribing"})
		return
	}

	session, err := h.checkout.CreateCheckoutSession(ctx, userID, plan)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
