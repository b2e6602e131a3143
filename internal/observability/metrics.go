package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout outcomes, labelled by result: ok, state_conflict, validation,
// reserve_failed, error.
var CheckoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "commerce",
	Subsystem: "orders",
	Name:      "checkout_total",
	Help:      "Checkout attempts by result.",
}, []string{"result"})

var CheckoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "commerce",
	Subsystem: "orders",
	Name:      "checkout_duration_seconds",
	Help:      "End-to-end checkout latency.",
	Buckets:   prometheus.DefBuckets,
})

// Stock mutations the product service rejected, labelled by reason:
// not_found, insufficient, conflict.
var StockRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "commerce",
	Subsystem: "inventory",
	Name:      "stock_rejections_total",
	Help:      "Rejected stock mutations by reason.",
}, []string{"reason"})
