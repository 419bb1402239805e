package stripewebhooks

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v75"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/subscriptions"
	stripegw "foodorder-api/internal/infra/stripe"
)

// handleCheckoutSessionCompleted returns the status reported back to Stripe:
// "received", "duplicate" or "pending".
func (h *Handler) handleCheckoutSessionCompleted(ctx context.Context, event stripe.Event, session *stripe.CheckoutSession) (string, error) {
	in, err := confirmationFromSession(event, session)
	if err != nil {
		return "", err
	}

	if !stripegw.PaymentStatusSettled(session.PaymentStatus) {
		h.log.Info("checkout completed without settled payment",
			slog.String("session_id", session.ID),
			slog.String("payment_status", string(session.PaymentStatus)),
		)
		return "pending", nil
	}

	sub, payment, err := h.confirmer.ConfirmPayment(ctx, in)
	if isDuplicate(err) {
		return "duplicate", nil
	}
	if err != nil {
		return "", err
	}

	attrs := []any{
		slog.Uint64("user_id", uint64(in.UserID)),
		slog.String("plan", string(sub.Status)),
	}
	if payment != nil {
		attrs = append(attrs, slog.Uint64("payment_id", uint64(payment.ID)))
	}
	h.log.Info("checkout confirmed", attrs...)
	return "received", nil
}

func confirmationFromSession(event stripe.Event, session *stripe.CheckoutSession) (subscriptions.Confirmation, error) {
	userID, err := userIDFromSessionOrRef(session)
	if err != nil {
		return subscriptions.Confirmation{}, err
	}

	rawPlan := ""
	if session.Metadata != nil {
		rawPlan = session.Metadata["plan"]
	}
	if strings.TrimSpace(rawPlan) == "" {
		return subscriptions.Confirmation{}, apperr.BadRequest("missing plan in session metadata")
	}
	plan, err := subscriptions.ParsePlan(rawPlan)
	if err != nil {
		return subscriptions.Confirmation{}, err
	}

	txID := session.ID
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		txID = session.PaymentIntent.ID
	}

	return subscriptions.Confirmation{
		Provider:      stripegw.Provider,
		EventID:       event.ID,
		EventType:     string(event.Type),
		UserID:        userID,
		Plan:          plan,
		Amount:        decimal.New(session.AmountTotal, -2),
		Method:        billing.MethodStripe,
		TransactionID: txID,
	}, nil
}

// userIDFromSessionOrRef reads metadata.userId, then metadata.user_id, then
// client_reference_id.
func userIDFromSessionOrRef(session *stripe.CheckoutSession) (uint, error) {
	raw := ""
	if session.Metadata != nil {
		raw = session.Metadata["userId"]
		if raw == "" {
			raw = session.Metadata["user_id"]
		}
	}
	if raw == "" {
		raw = session.ClientReferenceID
	}
	if raw == "" {
		return 0, apperr.BadRequest("missing userId (metadata.userId or client_reference_id)")
	}

	uid, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || uid == 0 {
		return 0, apperr.BadRequest("userId must be a positive integer")
	}
	return uint(uid), nil
}
