package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged nowhere and never propagated; a
// collector that fails to register keeps working unregistered.
type PrometheusSink struct {
	suggestionsTotal   *prometheus.CounterVec
	candidatesRanked   prometheus.Histogram
	simulationsTotal   prometheus.Counter
	simulationDuration prometheus.Histogram
	eventsCreatedTotal *prometheus.CounterVec
	eventsSkippedTotal *prometheus.CounterVec
}

func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		suggestionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldops_suggestions_served_total",
			Help: "Ranking requests served, by candidate kind.",
		}, []string{"kind"}),
		candidatesRanked: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fieldops_suggestion_candidates",
			Help:    "Candidates scored per ranking request.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		simulationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldops_simulations_total",
			Help: "Schedule advance runs started.",
		}),
		simulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fieldops_simulation_duration_seconds",
			Help:    "Duration of schedule advance runs.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
		eventsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldops_events_created_total",
			Help: "Materialized events, by category.",
		}, []string{"category"}),
		eventsSkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldops_events_skipped_total",
			Help: "Due entities skipped without materializing, by reason.",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{
		s.suggestionsTotal, s.candidatesRanked, s.simulationsTotal,
		s.simulationDuration, s.eventsCreatedTotal, s.eventsSkippedTotal,
	} {
		_ = reg.Register(c)
	}
	return s
}

func (s *PrometheusSink) SuggestionsServed(kind string, candidates int) {
	s.suggestionsTotal.WithLabelValues(kind).Inc()
	s.candidatesRanked.Observe(float64(candidates))
}

func (s *PrometheusSink) SimulationStarted() {
	s.simulationsTotal.Inc()
}

func (s *PrometheusSink) SimulationCompleted(d time.Duration, eventsCreated int) {
	s.simulationDuration.Observe(d.Seconds())
}

func (s *PrometheusSink) EventCreated(category string) {
	s.eventsCreatedTotal.WithLabelValues(category).Inc()
}

func (s *PrometheusSink) EventSkipped(reason string) {
	s.eventsSkippedTotal.WithLabelValues(reason).Inc()
}
