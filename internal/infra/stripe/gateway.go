// Package stripe wraps the Stripe SDK calls the billing flow depends on.
package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/subscriptions"
)

const Provider = "stripe"

type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceMonthly  string
	PriceYearly   string
	AppURL        string
}

type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type Gateway struct {
	cfg      Config
	sessions sessionCreator
}

func NewGateway(cfg Config) *Gateway {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return &Gateway{cfg: cfg, sessions: sc.CheckoutSessions}
}

// VerifyEvent authenticates a webhook payload against the endpoint secret.
func (g *Gateway) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	if g.cfg.WebhookSecret == "" {
		return stripe.Event{}, apperr.E(apperr.KindInternal, "STRIPE_WEBHOOK_SECRET not configured")
	}
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return stripe.Event{}, apperr.Wrap(apperr.KindBadRequest, err, "Signature verification failed")
	}
	return event, nil
}

// CreateCheckoutSession starts a one-off payment for plan. The user and plan
// travel in the session metadata and come back with checkout.session.completed.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, userID uint, plan subscriptions.Plan) (*CheckoutSession, error) {
	if g.cfg.SecretKey == "" {
		return nil, apperr.E(apperr.KindInternal, "Stripe key not configured")
	}
	priceID := g.priceFor(plan)
	if priceID == "" {
		return nil, apperr.E(apperr.KindInternal, fmt.Sprintf("no Stripe price configured for %s", plan))
	}

	appURL := strings.TrimRight(g.cfg.AppURL, "/")
	if appURL == "" {
		appURL = "http://localhost:5173"
	}
	uid := fmt.Sprint(userID)

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(appURL + "/account?checkout=success"),
		CancelURL:  stripe.String(appURL + "/account?canceled=1"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(uid),
	}
	params.Context = ctx
	params.AddMetadata("userId", uid)
	params.AddMetadata("plan", string(plan))

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe.CreateCheckoutSession: %w", err)
	}
	return &CheckoutSession{URL: s.URL, SessionID: s.ID}, nil
}

func (g *Gateway) priceFor(plan subscriptions.Plan) string {
	switch plan {
	case subscriptions.PlanMonthly:
		return g.cfg.PriceMonthly
	case subscriptions.PlanYearly:
		return g.cfg.PriceYearly
	}
	return ""
}
