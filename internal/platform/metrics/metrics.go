package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the record service.
type Metrics struct {
	Mutations       *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	CollectionSizes *prometheus.GaugeVec
}

// New creates and registers all metrics against the given registerer. Tests
// pass a fresh registry to avoid duplicate-registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medichart_mutations_total",
			Help: "Completed store mutations by entity and operation.",
		}, []string{"entity", "op"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medichart_rejections_total",
			Help: "Rejected operations by error code.",
		}, []string{"code"}),
		CollectionSizes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "medichart_collection_size",
			Help: "Current number of entities per collection.",
		}, []string{"collection"}),
	}
}

// ObserveMutation records a completed mutation.
func (m *Metrics) ObserveMutation(entity, op string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(entity, op).Inc()
}

// ObserveRejection records an operation rejected with a domain error code.
func (m *Metrics) ObserveRejection(code string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(code).Inc()
}

// SetCollectionSizes refreshes the per-collection size gauges.
func (m *Metrics) SetCollectionSizes(counts map[string]int) {
	if m == nil {
		return
	}
	for collection, n := range counts {
		m.CollectionSizes.WithLabelValues(collection).Set(float64(n))
	}
}
