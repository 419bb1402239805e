package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder-api/internal/api/respond"
)

// GetSubscription returns the caller's current subscription. Reading it may
// move an overdue subscription to EXPIRED.
func (h *Handler) GetSubscription(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	sub, err := h.subs.Current(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, h.log, "billing.GetSubscription", err)
		return
	}
	if sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No subscription"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) StartTrial(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	sub, err := h.subs.StartTrial(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, h.log, "billing.StartTrial", err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
