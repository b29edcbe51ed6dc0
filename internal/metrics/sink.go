package metrics

import "time"

// Sink records operational metrics. All methods are fire-and-forget:
// implementations must not block or propagate errors.
type Sink interface {
	// Ranking engine
	SuggestionsServed(kind string, candidates int)

	// Recurrence scheduler
	SimulationStarted()
	SimulationCompleted(duration time.Duration, eventsCreated int)
	EventCreated(category string)
	EventSkipped(reason string)
}

// Event categories.
const (
	CategoryScheduledService = "scheduled_service"
	CategoryPolicyPayment    = "policy_payment"
	CategoryFollowUp         = "follow_up"
)

// Skip reasons.
const (
	SkipDuplicate = "duplicate"
	SkipError     = "error"
)
