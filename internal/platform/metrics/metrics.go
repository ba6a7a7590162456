package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	JourneysCreated   *prometheus.CounterVec
	JourneysEvicted   *prometheus.CounterVec
	JourneysCompleted *prometheus.CounterVec
	JourneysCancelled *prometheus.CounterVec
	StepSubmitSeconds *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		JourneysCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_admin_journeys_created_total",
			Help: "Total number of wizard journeys started, by journey kind",
		}, []string{"kind"}),
		JourneysEvicted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_admin_journeys_evicted_total",
			Help: "Total number of journeys evicted by the per-collection capacity limit",
		}, []string{"kind"}),
		JourneysCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_admin_journeys_completed_total",
			Help: "Total number of journeys that reached their final save action",
		}, []string{"kind"}),
		JourneysCancelled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_admin_journeys_cancelled_total",
			Help: "Total number of journeys cancelled by the user",
		}, []string{"kind"}),
		StepSubmitSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contacts_admin_step_submit_duration_seconds",
			Help:    "Latency of wizard step submissions",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"kind", "step"}),
	}
}

// IncrementJourneysCreated records a new journey for the given kind.
func (m *Metrics) IncrementJourneysCreated(kind string) {
	m.JourneysCreated.WithLabelValues(kind).Inc()
}

// IncrementJourneysEvicted records a capacity eviction for the given kind.
func (m *Metrics) IncrementJourneysEvicted(kind string) {
	m.JourneysEvicted.WithLabelValues(kind).Inc()
}

// IncrementJourneysCompleted records a journey reaching its final save.
func (m *Metrics) IncrementJourneysCompleted(kind string) {
	m.JourneysCompleted.WithLabelValues(kind).Inc()
}

// IncrementJourneysCancelled records an explicit cancellation.
func (m *Metrics) IncrementJourneysCancelled(kind string) {
	m.JourneysCancelled.WithLabelValues(kind).Inc()
}

// ObserveStepSubmit records the latency of one wizard step submission.
func (m *Metrics) ObserveStepSubmit(kind, step string, d time.Duration) {
	m.StepSubmitSeconds.WithLabelValues(kind, step).Observe(d.Seconds())
}
