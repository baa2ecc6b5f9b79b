package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DeliveryMetrics counts lifecycle transitions and PIN checks.
type DeliveryMetrics struct {
	transitions *prometheus.CounterVec
	pinFailures prometheus.Counter
	soldAmount  prometheus.Counter
}

// NewDeliveryMetrics registers the delivery lifecycle metrics.
func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_transitions_total",
		Help:      "Delivery lifecycle transitions by resulting status.",
	}, []string{"status"})
	pinFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_pin_failures_total",
		Help:      "Verification attempts rejected for a wrong PIN.",
	})
	soldAmount := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_sold_amount_total",
		Help:      "Sum of payment amounts accrued on verified deliveries.",
	})
	reg.MustRegister(transitions, pinFailures, soldAmount)
	return &DeliveryMetrics{
		transitions: transitions,
		pinFailures: pinFailures,
		soldAmount:  soldAmount,
	}
}

// IncTransition counts a delivery entering status.
func (d *DeliveryMetrics) IncTransition(status string) {
	if d == nil || d.transitions == nil {
		return
	}
	d.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncPinFailure counts a rejected PIN.
func (d *DeliveryMetrics) IncPinFailure() {
	if d == nil || d.pinFailures == nil {
		return
	}
	d.pinFailures.Inc()
}

// AddSold accrues a verified payment amount.
func (d *DeliveryMetrics) AddSold(amount float64) {
	if d == nil || d.soldAmount == nil || amount <= 0 {
		return
	}
	d.soldAmount.Add(amount)
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
