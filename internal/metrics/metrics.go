package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEventsTotal counts Stripe webhook deliveries by event type and reconciliation result.
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garden",
		Subsystem: "billing",
		Name:      "webhook_events_total",
		Help:      "Stripe webhook deliveries by event type and result.",
	}, []string{"event_type", "result"})

	// WebhookDuration tracks webhook handling latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "garden",
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Stripe webhook handling duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// EntitlementChecksTotal counts gate decisions.
	EntitlementChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garden",
		Subsystem: "access",
		Name:      "entitlement_checks_total",
		Help:      "Entitlement gate decisions by outcome.",
	}, []string{"decision"})

	// ChatCompletionsTotal counts chat completions by outcome.
	ChatCompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garden",
		Subsystem: "chat",
		Name:      "completions_total",
		Help:      "Chat completion requests by outcome.",
	}, []string{"outcome"})

	// CheckoutSessionsTotal counts checkout session attempts.
	CheckoutSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garden",
		Subsystem: "billing",
		Name:      "checkout_sessions_total",
		Help:      "Checkout session creation attempts by outcome.",
	}, []string{"outcome"})
)
