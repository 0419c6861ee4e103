package metrics

import "github.com/prometheus/client_golang/prometheus"

// Activation outcomes.
const (
	OutcomeActivated     = "activated"
	OutcomeAlreadyActive = "already_active"
	OutcomeRejected      = "rejected"
)

// Webhook delivery results.
const (
	WebhookProcessed    = "processed"
	WebhookDuplicate    = "duplicate"
	WebhookBadSignature = "bad_signature"
	WebhookPaymentFail  = "payment_failed"
	WebhookError        = "error"
)

// BillingMetrics counts subscription lifecycle events.
type BillingMetrics struct {
	activations *prometheus.CounterVec
	webhooks    *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewBillingMetrics registers the billing counters on reg. A nil registerer
// yields a no-op recorder.
func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	if reg == nil {
		return &BillingMetrics{}
	}
	activations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscription_activations_total",
		Help:      "Activation attempts by entry point and outcome.",
	}, []string{"source", "outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_webhooks_total",
		Help:      "Payment webhook deliveries by result.",
	}, []string{"result"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscription_transitions_total",
		Help:      "Subscription status transitions.",
	}, []string{"to"})
	reg.MustRegister(activations, webhooks, transitions)
	return &BillingMetrics{activations: activations, webhooks: webhooks, transitions: transitions}
}

func (b *BillingMetrics) IncActivation(source, outcome string) {
	if b == nil || b.activations == nil {
		return
	}
	b.activations.WithLabelValues(normalizeLabel(source), normalizeLabel(outcome)).Inc()
}

func (b *BillingMetrics) IncWebhook(result string) {
	if b == nil || b.webhooks == nil {
		return
	}
	b.webhooks.WithLabelValues(normalizeLabel(result)).Inc()
}

func (b *BillingMetrics) IncTransition(to string) {
	if b == nil || b.transitions == nil {
		return
	}
	b.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}
