package billing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"foodorder-api/internal/api/respond"
	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/stores"
)

func (h *Handler) GetPaymentHistory(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	payments, err := h.payments.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, h.log, "billing.GetPaymentHistory", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// RecordOrderPayment registers how an order was paid. Only the owner of the
// order's store (or a platform administrator) may do it, once per order.
func (h *Handler) RecordOrderPayment(c *gin.Context) {
	const op = "billing.RecordOrderPayment"

	orderID, err := respond.IDParam(c, "id")
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	var body struct {
		Method        string          `json:"method" binding:"required"`
		Amount        decimal.Decimal `json:"amount"`
		TransactionID string          `json:"transaction_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "method and amount are required"})
		return
	}

	ctx := c.Request.Context()
	order, err := h.orders.FindByID(ctx, orderID)
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	actor := stores.Actor{UserID: c.GetUint("user_id"), Role: c.GetString("role")}
	if _, err := h.stores.Authorize(ctx, actor, order.StoreID); err != nil {
		respond.Error(c, h.log, op, err)
		return
	}

	payment, err := h.payments.CreatePayment(ctx, billing.NewPayment{
		Type:          billing.TypeOrder,
		Method:        billing.Method(strings.ToUpper(strings.TrimSpace(body.Method))),
		Amount:        body.Amount,
		OrderID:       &order.ID,
		TransactionID: body.TransactionID,
	})
	if err != nil {
		respond.Error(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}
