package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Discount resolution outcomes.
const (
	OutcomeTier     = "tier"
	OutcomeNoTier   = "no_tier"
	OutcomeDisabled = "disabled"
)

// PricingMetrics records pricing and settlement activity.
type PricingMetrics struct {
	resolutions   *prometheus.CounterVec
	tierConflicts prometheus.Counter
	ordersPlaced  *prometheus.CounterVec
	orderTotal    prometheus.Histogram
	payments      *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	m := &PricingMetrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_discount_resolutions_total",
			Help: "Discount tier resolutions by outcome.",
		}, []string{"outcome"}),
		tierConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_discount_tier_conflicts_total",
			Help: "Discount tier batches rejected for overlapping ranges.",
		}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders placed by payment type.",
		}, []string{"payment_type"}),
		orderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_total_amount",
			Help:    "Server computed order totals.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_payment_verifications_total",
			Help: "Payment verification decisions.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.resolutions, m.tierConflicts, m.ordersPlaced, m.orderTotal, m.payments)
	return m
}

// ObserveResolution counts a discount resolution outcome.
func (m *PricingMetrics) ObserveResolution(outcome string) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTierConflict counts a rejected tier batch.
func (m *PricingMetrics) IncTierConflict() {
	if m == nil || m.tierConflicts == nil {
		return
	}
	m.tierConflicts.Inc()
}

// ObserveOrder records a placed order and its total.
func (m *PricingMetrics) ObserveOrder(paymentType string, total decimal.Decimal) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(paymentType)).Inc()
	m.orderTotal.Observe(total.InexactFloat64())
}

// ObservePayment counts a payment verification decision.
func (m *PricingMetrics) ObservePayment(status string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
