package stripewebhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/iotest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75/webhook"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodorder-api/internal/apperr"
	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/infra/repository"
	stripegw "foodorder-api/internal/infra/stripe"
	"foodorder-api/internal/lib/clock"
)

const secret = "whsec_test"

type ConfirmerMock struct{ mock.Mock }

func (m *ConfirmerMock) ConfirmPayment(ctx context.Context, in subscriptions.Confirmation) (*subscriptions.Subscription, *billing.Payment, error) {
	args := m.Called(ctx, in)
	var (
		sub *subscriptions.Subscription
		pay *billing.Payment
	)
	if v := args.Get(0); v != nil {
		sub = v.(*subscriptions.Subscription)
	}
	if v := args.Get(1); v != nil {
		pay = v.(*billing.Payment)
	}
	return sub, pay, args.Error(2)
}

func newRouter(confirmer PaymentConfirmer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	gw := stripegw.NewGateway(stripegw.Config{SecretKey: "sk_test", WebhookSecret: secret})
	h := NewHandler(gw, confirmer, nil, log)

	r := gin.New()
	r.POST("/webhook", h.StripeWebhook)
	return r
}

func event(t *testing.T, eventType string, object map[string]any) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":     "evt_1",
		"object": "event",
		"type":   eventType,
		"data":   map[string]any{"object": object},
	})
	require.NoError(t, err)
	return body
}

func checkoutSession(metadata map[string]string) map[string]any {
	return map[string]any{
		"id":             "cs_test_1",
		"object":         "checkout.session",
		"amount_total":   49900,
		"payment_status": "paid",
		"payment_intent": "pi_123",
		"metadata":       metadata,
	}
}

func deliver(r *gin.Engine, payload []byte, sigSecret string) *httptest.ResponseRecorder {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: sigSecret})
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func status(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	if s, ok := body["status"]; ok {
		return s
	}
	return body["error"]
}

func TestStripeWebhook_CheckoutCompleted(t *testing.T) {
	confirmer := new(ConfirmerMock)
	confirmer.On("ConfirmPayment", mock.Anything, mock.MatchedBy(func(in subscriptions.Confirmation) bool {
		return in.UserID == 42 &&
			in.Plan == subscriptions.PlanYearly &&
			in.Amount.StringFixed(2) == "499.00" &&
			in.TransactionID == "pi_123" &&
			in.EventID == "evt_1" &&
			in.Provider == "stripe" &&
			in.Method == billing.MethodStripe
	})).Return(&subscriptions.Subscription{ID: 1, Status: subscriptions.StatusYearly}, &billing.Payment{ID: 9}, nil).Once()

	w := deliver(newRouter(confirmer), event(t, "checkout.session.completed",
		checkoutSession(map[string]string{"userId": "42", "plan": "YEARLY"})), secret)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "received", status(t, w))
	confirmer.AssertExpectations(t)
}

func TestStripeWebhook_Duplicate(t *testing.T) {
	confirmer := new(ConfirmerMock)
	confirmer.On("ConfirmPayment", mock.Anything, mock.Anything).
		Return(nil, nil, subscriptions.ErrEventAlreadyProcessed).Once()

	w := deliver(newRouter(confirmer), event(t, "checkout.session.completed",
		checkoutSession(map[string]string{"user_id": "42", "plan": "monthly"})), secret)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate", status(t, w))
}

func TestStripeWebhook_FallsBackToClientReference(t *testing.T) {
	confirmer := new(ConfirmerMock)
	confirmer.On("ConfirmPayment", mock.Anything, mock.MatchedBy(func(in subscriptions.Confirmation) bool {
		return in.UserID == 7 && in.TransactionID == "cs_test_1"
	})).Return(&subscriptions.Subscription{ID: 1, Status: subscriptions.StatusMonthly}, &billing.Payment{ID: 2}, nil).Once()

	session := checkoutSession(map[string]string{"plan": "MONTHLY"})
	session["client_reference_id"] = "7"
	delete(session, "payment_intent")

	w := deliver(newRouter(confirmer), event(t, "checkout.session.completed", session), secret)
	assert.Equal(t, http.StatusOK, w.Code)
	confirmer.AssertExpectations(t)
}

func TestStripeWebhook_RejectsWithoutSideEffects(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		secret   string
		wantCode int
	}{
		{"bad signature", map[string]string{"userId": "42", "plan": "YEARLY"}, "whsec_other", http.StatusBadRequest},
		{"missing user", map[string]string{"plan": "YEARLY"}, secret, http.StatusBadRequest},
		{"non numeric user", map[string]string{"userId": "abc", "plan": "YEARLY"}, secret, http.StatusBadRequest},
		{"zero user", map[string]string{"userId": "0", "plan": "YEARLY"}, secret, http.StatusBadRequest},
		{"missing plan", map[string]string{"userId": "42"}, secret, http.StatusBadRequest},
		{"unknown plan", map[string]string{"userId": "42", "plan": "WEEKLY"}, secret, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confirmer := new(ConfirmerMock)
			w := deliver(newRouter(confirmer), event(t, "checkout.session.completed", checkoutSession(tt.metadata)), tt.secret)

			assert.Equal(t, tt.wantCode, w.Code)
			confirmer.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)
		})
	}
}

func TestStripeWebhook_UnpaidSessionIsPending(t *testing.T) {
	confirmer := new(ConfirmerMock)
	session := checkoutSession(map[string]string{"userId": "42", "plan": "YEARLY"})
	session["payment_status"] = "unpaid"

	w := deliver(newRouter(confirmer), event(t, "checkout.session.completed", session), secret)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", status(t, w))
	confirmer.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)
}

func TestStripeWebhook_FreeCheckoutUpgrades(t *testing.T) {
	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&subscriptions.Subscription{}, &billing.Payment{}, &billing.ProcessedEvent{}))

	clk := clock.NewManual(time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := subscriptions.NewService(repository.NewSubscriptions(db), repository.NewUnitOfWork(db, clk, log), clk, nil, log)
	_, err = svc.StartTrial(ctx, 42)
	require.NoError(t, err)

	session := checkoutSession(map[string]string{"userId": "42", "plan": "YEARLY"})
	session["amount_total"] = 0
	session["payment_status"] = "no_payment_required"

	w := deliver(newRouter(svc), event(t, "checkout.session.completed", session), secret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "received", status(t, w))

	current, err := svc.Current(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, subscriptions.StatusYearly, current.Status)

	var payments int64
	require.NoError(t, db.Model(&billing.Payment{}).Count(&payments).Error)
	assert.Zero(t, payments)

	w = deliver(newRouter(svc), event(t, "checkout.session.completed", session), secret)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate", status(t, w))
}

func TestStripeWebhook_BadBodyIsClientError(t *testing.T) {
	confirmer := new(ConfirmerMock)
	r := newRouter(confirmer)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(make([]byte, maxBodyBytes+1)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/webhook", iotest.ErrReader(errors.New("connection reset")))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	confirmer.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)
}

func TestStripeWebhook_ErrorsAskForRedelivery(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"no subscription", apperr.NotFound("subscription not found"), http.StatusNotFound},
		{"database failure", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confirmer := new(ConfirmerMock)
			confirmer.On("ConfirmPayment", mock.Anything, mock.Anything).Return(nil, nil, tt.err).Once()

			w := deliver(newRouter(confirmer), event(t, "checkout.session.completed",
				checkoutSession(map[string]string{"userId": "42", "plan": "YEARLY"})), secret)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestStripeWebhook_IgnoresOtherEvents(t *testing.T) {
	confirmer := new(ConfirmerMock)
	w := deliver(newRouter(confirmer), event(t, "invoice.paid", map[string]any{"id": "in_1"}), secret)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ignored", status(t, w))
	confirmer.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)
}
