package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the service. Methods are nil-safe
// so handlers under test can run without a registry.
type Metrics struct {
	IntentsAccepted  prometheus.Counter
	IntentsRejected  *prometheus.CounterVec
	DeliveryFailures prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		IntentsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "volition_intents_accepted_total",
			Help: "Total intents admitted to the ledger",
		}),
		IntentsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "volition_intents_rejected_total",
			Help: "Total intents refused admission, by reason",
		}, []string{"reason"}),
		DeliveryFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "volition_delivery_failures_total",
			Help: "Total chat responses that could not be delivered",
		}),
	}
}

// IncrementAccepted records one admitted intent.
func (m *Metrics) IncrementAccepted() {
	if m != nil {
		m.IntentsAccepted.Inc()
	}
}

// IncrementRejected records one refused intent.
func (m *Metrics) IncrementRejected(reason string) {
	if m != nil {
		m.IntentsRejected.WithLabelValues(reason).Inc()
	}
}

// IncrementDeliveryFailure records one failed outbound delivery.
func (m *Metrics) IncrementDeliveryFailure() {
	if m != nil {
		m.DeliveryFailures.Inc()
	}
}
