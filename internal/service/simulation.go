package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fieldops/backend/internal/metrics"
	"github.com/fieldops/backend/internal/models"
	"github.com/fieldops/backend/internal/notify"
	"github.com/fieldops/backend/internal/schedule"
	"github.com/fieldops/backend/internal/utils"
)

// SimulationStore is the persistence surface the scheduler needs. The
// two Fire* operations are atomic: they insert the materialized event
// and advance the entity's next-run in one transaction, returning
// ErrDuplicateEvent when the event already exists for that due instant
// (in which case they still advance next-run, which is the resume path
// after a partially completed step).
type SimulationStore interface {
	ListDueScheduledServices(ctx context.Context, at time.Time) ([]models.ScheduledService, error)
	ListDuePolicyBillings(ctx context.Context, at time.Time) ([]models.PolicyBilling, error)
	ListDueFollowUpReminders(ctx context.Context, at time.Time) ([]models.FollowUpReminder, error)

	FireScheduledService(ctx context.Context, svc models.ScheduledService, order models.ServiceOrder, item models.OrderItem, nextRun time.Time) error
	FirePolicyBilling(ctx context.Context, billing models.PolicyBilling, payment models.PolicyPayment, nextRun time.Time) error
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error

	GetServiceType(ctx context.Context, id uuid.UUID) (models.ServiceType, error)
}

type AdvanceRequest struct {
	From             *time.Time
	DaysToAdvance    int
	MinutesToAdvance int
	StepMinutes      int
	SimulateEvents   bool
}

type SimulationService struct {
	Store    SimulationStore
	Notifier notify.Adapter
	Metrics  metrics.Sink
	Logger   zerolog.Logger
	Clock    func() time.Time
}

// Advance walks the virtual clock from the request's start instant over
// the requested window in fixed steps, firing every due recurring
// entity exactly once per due instant. The loop is sequential on
// purpose: each step must see the previous step's next-run updates so
// an entity can fire multiple times inside one advance window.
//
// A failure on one entity is recorded and skipped; its next-run is left
// unadvanced so the next invocation retries it. Cancellation between
// steps returns the partial result; completed steps are safe to replay
// because the duplicate guard absorbs them.
func (s *SimulationService) Advance(ctx context.Context, req AdvanceRequest) (models.SimulationResult, error) {
	from := s.now()
	if req.From != nil {
		from = req.From.UTC()
	}
	stepMin := req.StepMinutes
	if stepMin <= 0 {
		stepMin = 1
	}
	totalMinutes := req.DaysToAdvance*24*60 + req.MinutesToAdvance

	res := models.SimulationResult{
		SimulationDate: from.Add(time.Duration(totalMinutes) * time.Minute),
		Details:        []models.SimulationEvent{},
	}

	s.sink().SimulationStarted()
	started := time.Now()

	st := &advanceState{
		dryRun:       !req.SimulateEvents,
		serviceTypes: map[uuid.UUID]models.ServiceType{},
		reported:     map[string]struct{}{},
	}

	for offset := 0; offset <= totalMinutes; offset += stepMin {
		select {
		case <-ctx.Done():
			s.sink().SimulationCompleted(time.Since(started), res.EventsCreated)
			return res, ctx.Err()
		default:
		}

		instant := from.Add(time.Duration(offset) * time.Minute)
		s.stepScheduledServices(ctx, instant, st, &res)
		s.stepPolicyBillings(ctx, instant, st, &res)
		s.stepFollowUpReminders(ctx, instant, st, &res)
	}

	s.sink().SimulationCompleted(time.Since(started), res.EventsCreated)
	return res, nil
}

type advanceState struct {
	dryRun       bool
	serviceTypes map[uuid.UUID]models.ServiceType
	// reported dedupes dry-run detail entries per (entity, due instant).
	reported map[string]struct{}
}

func (s *SimulationService) stepScheduledServices(ctx context.Context, instant time.Time, st *advanceState, res *models.SimulationResult) {
	due, err := s.Store.ListDueScheduledServices(ctx, instant)
	if err != nil {
		s.recordError(res, fmt.Errorf("list due scheduled services: %w", err))
		return
	}

	for _, svc := range due {
		freq := schedule.Frequency{Type: schedule.FrequencyType(svc.FrequencyType), Value: svc.FrequencyValue}
		if err := freq.Validate(); err != nil {
			s.recordEntityError(res, "scheduled_service", svc.ID, err)
			continue
		}
		nextRun := freq.Next(svc.NextRun)

		if st.dryRun {
			s.reportDry(st, res, models.SimulationEvent{
				Type:     "scheduled_service_due",
				Date:     instant,
				EntityID: svc.ID,
				ClientID: svc.ClientID,
				NextRun:  &nextRun,
			}, svc.ID, svc.NextRun)
			continue
		}

		serviceType, err := s.serviceType(ctx, st, svc.ServiceTypeID)
		if err != nil {
			s.recordEntityError(res, "scheduled_service", svc.ID, fmt.Errorf("service type lookup: %w", err))
			s.sink().EventSkipped(metrics.SkipError)
			continue
		}

		order, item := buildScheduledOrder(svc, serviceType, instant)
		err = s.Store.FireScheduledService(ctx, svc, order, item, nextRun)
		if errors.Is(err, ErrDuplicateEvent) {
			res.DuplicatesSkipped++
			s.sink().EventSkipped(metrics.SkipDuplicate)
			continue
		}
		if err != nil {
			s.recordEntityError(res, "scheduled_service", svc.ID, err)
			s.sink().EventSkipped(metrics.SkipError)
			continue
		}

		res.EventsCreated++
		res.ScheduledServicesCreated++
		s.sink().EventCreated(metrics.CategoryScheduledService)
		res.Details = append(res.Details, models.SimulationEvent{
			Type:     "scheduled_service",
			Date:     instant,
			EntityID: svc.ID,
			ClientID: svc.ClientID,
			Detail:   serviceType.Name,
			NextRun:  &nextRun,
		})
	}
}

func (s *SimulationService) stepPolicyBillings(ctx context.Context, instant time.Time, st *advanceState, res *models.SimulationResult) {
	due, err := s.Store.ListDuePolicyBillings(ctx, instant)
	if err != nil {
		s.recordError(res, fmt.Errorf("list due policy billings: %w", err))
		return
	}

	for _, billing := range due {
		freq := schedule.Frequency{Type: schedule.FrequencyType(billing.FrequencyType), Value: billing.FrequencyValue}
		if err := freq.Validate(); err != nil {
			s.recordEntityError(res, "policy_billing", billing.ID, err)
			continue
		}
		nextRun := freq.Next(billing.NextBillingRun)

		if st.dryRun {
			s.reportDry(st, res, models.SimulationEvent{
				Type:     "policy_billing_due",
				Date:     instant,
				EntityID: billing.ID,
				ClientID: billing.ClientID,
				NextRun:  &nextRun,
			}, billing.ID, billing.NextBillingRun)
			continue
		}

		payment := models.PolicyPayment{
			ID:              uuid.New(),
			PolicyBillingID: billing.ID,
			ClientID:        billing.ClientID,
			Amount:          billing.Amount,
			Status:          models.PaymentStatusPending,
			DueAt:           billing.NextBillingRun,
			TraceKey:        utils.TraceKey(billing.ID.String(), billing.NextBillingRun),
			CreatedAt:       instant,
		}

		err = s.Store.FirePolicyBilling(ctx, billing, payment, nextRun)
		if errors.Is(err, ErrDuplicateEvent) {
			res.DuplicatesSkipped++
			s.sink().EventSkipped(metrics.SkipDuplicate)
			continue
		}
		if err != nil {
			s.recordEntityError(res, "policy_billing", billing.ID, err)
			s.sink().EventSkipped(metrics.SkipError)
			continue
		}

		res.EventsCreated++
		res.PolicyPaymentsCreated++
		s.sink().EventCreated(metrics.CategoryPolicyPayment)
		res.Details = append(res.Details, models.SimulationEvent{
			Type:     "policy_payment",
			Date:     instant,
			EntityID: billing.ID,
			ClientID: billing.ClientID,
			Detail:   fmt.Sprintf("payment of %.2f", billing.Amount),
			NextRun:  &nextRun,
		})
	}
}

func (s *SimulationService) stepFollowUpReminders(ctx context.Context, instant time.Time, st *advanceState, res *models.SimulationResult) {
	due, err := s.Store.ListDueFollowUpReminders(ctx, instant)
	if err != nil {
		s.recordError(res, fmt.Errorf("list due reminders: %w", err))
		return
	}

	for _, r := range due {
		if st.dryRun {
			s.reportDry(st, res, models.SimulationEvent{
				Type:     "follow_up_due",
				Date:     instant,
				EntityID: r.ID,
				ClientID: r.ClientID,
			}, r.ID, r.ScheduledAt)
			continue
		}

		if s.Notifier != nil {
			if err := s.Notifier.SendReminder(ctx, r); err != nil {
				// Left pending; picked up again on the next invocation.
				s.recordEntityError(res, "follow_up", r.ID, err)
				s.sink().EventSkipped(metrics.SkipError)
				continue
			}
		}
		if err := s.Store.MarkReminderSent(ctx, r.ID, instant); err != nil {
			s.recordEntityError(res, "follow_up", r.ID, err)
			s.sink().EventSkipped(metrics.SkipError)
			continue
		}

		res.EventsCreated++
		res.FollowUpsCreated++
		s.sink().EventCreated(metrics.CategoryFollowUp)
		res.Details = append(res.Details, models.SimulationEvent{
			Type:     "follow_up",
			Date:     instant,
			EntityID: r.ID,
			ClientID: r.ClientID,
			Detail:   r.Message,
		})
	}
}

func buildScheduledOrder(svc models.ScheduledService, st models.ServiceType, instant time.Time) (models.ServiceOrder, models.OrderItem) {
	dueAt := svc.NextRun
	order := models.ServiceOrder{
		ID:                 uuid.New(),
		ClientID:           svc.ClientID,
		ServiceTypeID:      svc.ServiceTypeID,
		Status:             models.OrderStatusPending,
		ScheduledServiceID: &svc.ID,
		ScheduledFor:       &dueAt,
		TraceKey:           utils.TraceKey(svc.ID.String(), dueAt),
		CreatedAt:          instant,
	}
	item := models.OrderItem{
		ID:            uuid.New(),
		OrderID:       order.ID,
		ServiceTypeID: st.ID,
		Description:   st.Name + " (recurring)",
		UnitPrice:     st.BasePrice,
		Quantity:      1,
	}
	return order, item
}

func (s *SimulationService) serviceType(ctx context.Context, st *advanceState, id uuid.UUID) (models.ServiceType, error) {
	if cached, ok := st.serviceTypes[id]; ok {
		return cached, nil
	}
	loaded, err := s.Store.GetServiceType(ctx, id)
	if err != nil {
		return models.ServiceType{}, err
	}
	st.serviceTypes[id] = loaded
	return loaded, nil
}

func (s *SimulationService) reportDry(st *advanceState, res *models.SimulationResult, ev models.SimulationEvent, entityID uuid.UUID, dueAt time.Time) {
	key := entityID.String() + ":" + dueAt.UTC().Format(time.RFC3339)
	if _, seen := st.reported[key]; seen {
		return
	}
	st.reported[key] = struct{}{}
	res.Details = append(res.Details, ev)
}

func (s *SimulationService) recordError(res *models.SimulationResult, err error) {
	s.Logger.Error().Err(err).Msg("simulation step failed")
	res.Errors = append(res.Errors, err.Error())
}

func (s *SimulationService) recordEntityError(res *models.SimulationResult, kind string, id uuid.UUID, err error) {
	s.Logger.Warn().Err(err).Str("kind", kind).Str("entity_id", id.String()).Msg("entity skipped")
	res.Errors = append(res.Errors, fmt.Sprintf("%s %s: %v", kind, id, err))
}

func (s *SimulationService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *SimulationService) sink() metrics.Sink {
	if s.Metrics == nil {
		return metrics.NewNoopSink()
	}
	return s.Metrics
}
