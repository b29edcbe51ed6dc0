package metrics

import "time"

// NoopSink discards all metrics. Used in tests and when metrics are
// disabled.
type NoopSink struct{}

func NewNoopSink() *NoopSink { return &NoopSink{} }

func (*NoopSink) SuggestionsServed(string, int)              {}
func (*NoopSink) SimulationStarted()                         {}
func (*NoopSink) SimulationCompleted(time.Duration, int)     {}
func (*NoopSink) EventCreated(string)                        {}
func (*NoopSink) EventSkipped(string)                        {}
