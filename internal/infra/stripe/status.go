package stripe

import (
	"strings"

	"github.com/stripe/stripe-go/v75"
)

// PaymentStatusSettled normalizes checkout.session payment_status. Older
// payloads omit the field; a completed session without it counts as paid.
func PaymentStatusSettled(status stripe.CheckoutSessionPaymentStatus) bool {
	switch stripe.CheckoutSessionPaymentStatus(strings.TrimSpace(string(status))) {
	case "", stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return true
	default:
		return false
	}
}
