package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics shared by the API and the worker.
type Metrics struct {
	DispatchesTotal     *prometheus.CounterVec
	ShippingEventsTotal *prometheus.CounterVec
}

// NewMetrics registers metrics on reg; nil means the default registerer.
// Tests pass their own registry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		DispatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatchbox_dispatches_total",
				Help: "Order dispatch attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		ShippingEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatchbox_shipping_events_total",
				Help: "Ingested shipping events by event name",
			},
			[]string{"event_name"},
		),
	}
}

func (m *Metrics) RecordDispatch(provider, outcome string) {
	m.DispatchesTotal.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) RecordShippingEvent(eventName string) {
	m.ShippingEventsTotal.WithLabelValues(eventName).Inc()
}
