package models

import (
	"time"

	"github.com/google/uuid"
)

type ServiceType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BasePrice float64   `json:"base_price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Technician struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Available       bool       `json:"available"`
	YearsExperience int        `json:"years_experience"`
	FleetID         *uuid.UUID `json:"fleet_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Fleet struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// TechnicianCandidate is the per-request view the ranking engine scores.
// Computed on demand, never persisted.
type TechnicianCandidate struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Available       bool      `json:"available"`
	YearsExperience int       `json:"years_experience"`
	SkillLevel      int       `json:"skill_level"`
	ActiveOrders    int       `json:"active_orders"`
}

type FleetCandidate struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	AvgSkillLevel        float64   `json:"avg_skill_level"`
	AvailableTechnicians int       `json:"available_technicians"`
	TotalTechnicians     int       `json:"total_technicians"`
	ActiveOrders         int       `json:"active_orders"`
}

type SuggestionKind string

const (
	SuggestionKindTechnician SuggestionKind = "technician"
	SuggestionKindFleet      SuggestionKind = "fleet"
)

type Suggestion struct {
	CandidateID     uuid.UUID      `json:"candidate_id"`
	CandidateName   string         `json:"candidate_name"`
	Kind            SuggestionKind `json:"kind"`
	Score           float64        `json:"score"`
	Reason          string         `json:"suggestion_reason"`
	Workload        int            `json:"workload"`
	SkillLevel      float64        `json:"skill_level"`
	YearsExperience int            `json:"years_experience,omitempty"`
}

const (
	OrderStatusPending    = "PENDING"
	OrderStatusEnRoute    = "EN_ROUTE"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

type ServiceOrder struct {
	ID                 uuid.UUID  `json:"id"`
	ClientID           uuid.UUID  `json:"client_id"`
	ServiceTypeID      uuid.UUID  `json:"service_type_id"`
	TechnicianID       *uuid.UUID `json:"technician_id,omitempty"`
	Status             string     `json:"status"`
	ScheduledServiceID *uuid.UUID `json:"scheduled_service_id,omitempty"`
	ScheduledFor       *time.Time `json:"scheduled_for,omitempty"`
	TraceKey           string     `json:"trace_key,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type OrderItem struct {
	ID            uuid.UUID `json:"id"`
	OrderID       uuid.UUID `json:"order_id"`
	ServiceTypeID uuid.UUID `json:"service_type_id"`
	Description   string    `json:"description"`
	UnitPrice     float64   `json:"unit_price"`
	Quantity      int       `json:"quantity"`
}

type Client struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type PolicyClient struct {
	ID       uuid.UUID `json:"id"`
	ClientID uuid.UUID `json:"client_id"`
	PolicyID uuid.UUID `json:"policy_id"`
	Active   bool      `json:"active"`
}

// ScheduledService is a recurring entity that materializes service orders.
// NextRun is written only by the scheduler.
type ScheduledService struct {
	ID             uuid.UUID `json:"id"`
	PolicyClientID uuid.UUID `json:"policy_client_id"`
	ClientID       uuid.UUID `json:"client_id"`
	ServiceTypeID  uuid.UUID `json:"service_type_id"`
	FrequencyType  string    `json:"frequency_type"`
	FrequencyValue int       `json:"frequency_value"`
	NextRun        time.Time `json:"next_run"`
	Active         bool      `json:"is_active"`
}

type PolicyBilling struct {
	ID             uuid.UUID `json:"id"`
	PolicyClientID uuid.UUID `json:"policy_client_id"`
	ClientID       uuid.UUID `json:"client_id"`
	Amount         float64   `json:"amount"`
	FrequencyType  string    `json:"frequency_type"`
	FrequencyValue int       `json:"frequency_value"`
	NextBillingRun time.Time `json:"next_billing_run"`
	Active         bool      `json:"is_active"`
}

const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
)

type PolicyPayment struct {
	ID              uuid.UUID `json:"id"`
	PolicyBillingID uuid.UUID `json:"policy_billing_id"`
	ClientID        uuid.UUID `json:"client_id"`
	Amount          float64   `json:"amount"`
	Status          string    `json:"status"`
	DueAt           time.Time `json:"due_at"`
	TraceKey        string    `json:"trace_key,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

const (
	ReminderStatusPending = "PENDING"
	ReminderStatusSent    = "SENT"
)

// FollowUpReminder is one-shot: it fires once and is never rescheduled.
type FollowUpReminder struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	ClientID    uuid.UUID  `json:"client_id"`
	ClientEmail string     `json:"client_email,omitempty"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}

type SimulationEvent struct {
	Type     string     `json:"type"`
	Date     time.Time  `json:"date"`
	EntityID uuid.UUID  `json:"entity_id"`
	ClientID uuid.UUID  `json:"client_id,omitempty"`
	Detail   string     `json:"detail,omitempty"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}

type SimulationResult struct {
	EventsCreated            int               `json:"events_created"`
	ScheduledServicesCreated int               `json:"scheduled_services_created"`
	PolicyPaymentsCreated    int               `json:"policy_payments_created"`
	FollowUpsCreated         int               `json:"follow_ups_created"`
	DuplicatesSkipped        int               `json:"duplicates_skipped"`
	SimulationDate           time.Time         `json:"simulation_date"`
	Details                  []SimulationEvent `json:"details"`
	Errors                   []string          `json:"errors,omitempty"`
}

type SimulationRun struct {
	ID         uuid.UUID  `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Status     string     `json:"status"`
	Summary    []byte     `json:"summary"`
}
