package stripewebhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/lib/sl"
	"foodorder-api/internal/metrics"
)

const maxBodyBytes = 65536

type EventVerifier interface {
	VerifyEvent(payload []byte, signature string) (stripe.Event, error)
}

type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, in subscriptions.Confirmation) (*subscriptions.Subscription, *billing.Payment, error)
}

type Handler struct {
	verifier  EventVerifier
	confirmer PaymentConfirmer
	metrics   *metrics.Metrics
	log       *slog.Logger
}

func NewHandler(verifier EventVerifier, confirmer PaymentConfirmer, m *metrics.Metrics, log *slog.Logger) *Handler {
	return &Handler{verifier: verifier, confirmer: confirmer, metrics: m, log: log}
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	const op = "stripewebhooks.StripeWebhook"
	log := h.log.With(slog.String("op", op))

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		h.metrics.WebhookEvent("unknown", "rejected")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := h.verifier.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Warn("stripe signature verification failed", sl.Err(err))
		h.metrics.WebhookEvent("unknown", "rejected")
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
		return
	}
	eventType := string(event.Type)
	log = log.With(slog.String("event_id", event.ID), slog.String("type", eventType))

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			h.metrics.WebhookEvent(eventType, "rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		status, err := h.handleCheckoutSessionCompleted(c.Request.Context(), event, &session)
		if err != nil {
			h.metrics.WebhookEvent(eventType, "error")
			code := apperr.HTTPStatus(err)
			if code >= http.StatusInternalServerError {
				log.Error("checkout completion failed", sl.Err(err))
			} else {
				log.Warn("checkout completion rejected", sl.Err(err))
			}
			c.JSON(code, gin.H{"error": apperr.PublicMessage(err)})
			return
		}
		h.metrics.WebhookEvent(eventType, status)
		c.JSON(http.StatusOK, gin.H{"status": status})

	default:
		// Acknowledge unknown events to avoid retries
		h.metrics.WebhookEvent(eventType, "ignored")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}

func isDuplicate(err error) bool {
	return errors.Is(err, subscriptions.ErrEventAlreadyProcessed)
}
