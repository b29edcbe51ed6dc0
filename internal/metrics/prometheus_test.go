package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusSink_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)

	sink.SuggestionsServed("technician", 3)
	sink.SuggestionsServed("technician", 0)
	sink.SuggestionsServed("fleet", 2)

	sink.SimulationStarted()
	sink.SimulationCompleted(120*time.Millisecond, 5)

	sink.EventCreated(CategoryScheduledService)
	sink.EventCreated(CategoryScheduledService)
	sink.EventCreated(CategoryPolicyPayment)
	sink.EventSkipped(SkipDuplicate)
	sink.EventSkipped(SkipError)

	if got := testutil.ToFloat64(sink.suggestionsTotal.WithLabelValues("technician")); got != 2 {
		t.Fatalf("technician suggestions = %f, want 2", got)
	}
	if got := testutil.ToFloat64(sink.simulationsTotal); got != 1 {
		t.Fatalf("simulations = %f, want 1", got)
	}
	if got := testutil.ToFloat64(sink.eventsCreatedTotal.WithLabelValues(CategoryScheduledService)); got != 2 {
		t.Fatalf("scheduled service events = %f, want 2", got)
	}
	if got := testutil.ToFloat64(sink.eventsSkippedTotal.WithLabelValues(SkipDuplicate)); got != 1 {
		t.Fatalf("duplicate skips = %f, want 1", got)
	}
}

func TestPrometheusSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusSink(reg)
	// Second sink on the same registry must not panic; the collectors
	// simply stay unregistered.
	sink := NewPrometheusSink(reg)
	sink.SuggestionsServed("technician", 1)
}

func TestNoopSink(t *testing.T) {
	sink := NewNoopSink()
	sink.SuggestionsServed("technician", 1)
	sink.SimulationStarted()
	sink.SimulationCompleted(time.Second, 0)
	sink.EventCreated(CategoryFollowUp)
	sink.EventSkipped(SkipError)
}
