// Package metrics exposes the Prometheus collectors reported by the store
// availability and subscription engines.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "foodorder"

type Metrics struct {
	storeTransitions *prometheus.CounterVec
	expirations      *prometheus.CounterVec
	upgrades         *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
	payments         *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global Prometheus registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNewMetrics registers the collectors on reg. Collectors that are already
// registered are reused; any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		storeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stores",
			Name:      "availability_transitions_total",
			Help:      "Store open/closed flips written by the availability engine.",
		}, []string{"to"}),
		expirations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscriptions",
			Name:      "expirations_total",
			Help:      "Subscriptions moved to EXPIRED, by path (sweep or lazy).",
		}, []string{"path"}),
		upgrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscriptions",
			Name:      "upgrades_total",
			Help:      "Subscription upgrades by plan.",
		}, []string{"plan"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "webhook_events_total",
			Help:      "Payment gateway webhook deliveries by event type and outcome.",
		}, []string{"type", "outcome"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "payments_recorded_total",
			Help:      "Payment records created by type.",
		}, []string{"type"}),
	}

	targets := []**prometheus.CounterVec{
		&m.storeTransitions, &m.expirations, &m.upgrades, &m.webhookEvents, &m.payments,
	}
	for _, target := range targets {
		if err := reg.Register(*target); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				*target = already.ExistingCollector.(*prometheus.CounterVec)
				continue
			}
			panic(err)
		}
	}
	return m
}

func (m *Metrics) StoreTransition(open bool) {
	if m == nil {
		return
	}
	to := "closed"
	if open {
		to = "open"
	}
	m.storeTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) SubscriptionExpired(path string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.expirations.WithLabelValues(path).Add(float64(n))
}

func (m *Metrics) SubscriptionUpgraded(plan string) {
	if m == nil {
		return
	}
	m.upgrades.WithLabelValues(plan).Inc()
}

func (m *Metrics) WebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) PaymentRecorded(paymentType string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(paymentType).Inc()
}
