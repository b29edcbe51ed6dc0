package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/backend/internal/models"
	"github.com/fieldops/backend/internal/service"
)

// Store implements service.SuggestionStore and service.SimulationStore
// on PostgreSQL.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetServiceType(ctx context.Context, id uuid.UUID) (models.ServiceType, error) {
	var st models.ServiceType
	err := s.Pool.QueryRow(ctx, queryGetServiceType, id).Scan(&st.ID, &st.Name, &st.BasePrice, &st.Active, &st.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ServiceType{}, service.ErrServiceTypeNotFound
	}
	if err != nil {
		return models.ServiceType{}, err
	}
	return st, nil
}

// ListTechnicianCandidates returns the scoring view for every available
// technician holding a skill row for the service type. A row that fails
// to scan excludes that candidate only.
func (s *Store) ListTechnicianCandidates(ctx context.Context, serviceTypeID uuid.UUID) ([]models.TechnicianCandidate, error) {
	rows, err := s.Pool.Query(ctx, queryTechnicianCandidates, serviceTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TechnicianCandidate
	for rows.Next() {
		var c models.TechnicianCandidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Available, &c.YearsExperience, &c.SkillLevel, &c.ActiveOrders); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListFleetCandidates(ctx context.Context, serviceTypeID uuid.UUID) ([]models.FleetCandidate, error) {
	rows, err := s.Pool.Query(ctx, queryFleetCandidates, serviceTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FleetCandidate
	for rows.Next() {
		var c models.FleetCandidate
		if err := rows.Scan(&c.ID, &c.Name, &c.AvgSkillLevel, &c.AvailableTechnicians, &c.TotalTechnicians, &c.ActiveOrders); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListDueScheduledServices(ctx context.Context, at time.Time) ([]models.ScheduledService, error) {
	rows, err := s.Pool.Query(ctx, queryDueScheduledServices, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScheduledService
	for rows.Next() {
		var svc models.ScheduledService
		if err := rows.Scan(&svc.ID, &svc.PolicyClientID, &svc.ClientID, &svc.ServiceTypeID,
			&svc.FrequencyType, &svc.FrequencyValue, &svc.NextRun, &svc.Active); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *Store) ListDuePolicyBillings(ctx context.Context, at time.Time) ([]models.PolicyBilling, error) {
	rows, err := s.Pool.Query(ctx, queryDuePolicyBillings, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PolicyBilling
	for rows.Next() {
		var b models.PolicyBilling
		if err := rows.Scan(&b.ID, &b.PolicyClientID, &b.ClientID, &b.Amount,
			&b.FrequencyType, &b.FrequencyValue, &b.NextBillingRun, &b.Active); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) ListDueFollowUpReminders(ctx context.Context, at time.Time) ([]models.FollowUpReminder, error) {
	rows, err := s.Pool.Query(ctx, queryDueFollowUpReminders, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FollowUpReminder
	for rows.Next() {
		var r models.FollowUpReminder
		if err := rows.Scan(&r.ID, &r.OrderID, &r.ClientID, &r.ClientEmail, &r.Message, &r.Status, &r.ScheduledAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FireScheduledService inserts the materialized order with its line item
// and advances next_run in one transaction. When the (entity, due
// instant) pair already produced an order it reports
// service.ErrDuplicateEvent but still advances next_run, resuming a
// partially completed step.
func (s *Store) FireScheduledService(ctx context.Context, svc models.ScheduledService, order models.ServiceOrder, item models.OrderItem, nextRun time.Time) error {
	duplicate := false
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, queryInsertScheduledOrder,
			order.ID, order.ClientID, order.ServiceTypeID, order.Status,
			order.ScheduledServiceID, order.ScheduledFor, order.TraceKey, order.CreatedAt,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			duplicate = true
		} else if err != nil {
			return err
		}

		if !duplicate {
			if _, err := tx.Exec(ctx, queryInsertOrderItem,
				item.ID, item.OrderID, item.ServiceTypeID, item.Description, item.UnitPrice, item.Quantity); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, queryAdvanceScheduledService, svc.ID, nextRun)
		return err
	})
	if err != nil {
		return err
	}
	if duplicate {
		return service.ErrDuplicateEvent
	}
	return nil
}

func (s *Store) FirePolicyBilling(ctx context.Context, billing models.PolicyBilling, payment models.PolicyPayment, nextRun time.Time) error {
	duplicate := false
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, queryInsertPolicyPayment,
			payment.ID, payment.PolicyBillingID, payment.ClientID, payment.Amount,
			payment.Status, payment.DueAt, payment.TraceKey, payment.CreatedAt,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			duplicate = true
		} else if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, queryAdvancePolicyBilling, billing.ID, nextRun)
		return err
	})
	if err != nil {
		return err
	}
	if duplicate {
		return service.ErrDuplicateEvent
	}
	return nil
}

func (s *Store) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.Pool.Exec(ctx, queryMarkReminderSent, id, at)
	return err
}

func (s *Store) ListOrders(ctx context.Context, status string, limit, offset int) ([]models.ServiceOrder, error) {
	query := queryListOrders
	var args []any
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, clampLimit(limit), clampOffset(offset))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServiceOrder
	for rows.Next() {
		var o models.ServiceOrder
		if err := rows.Scan(&o.ID, &o.ClientID, &o.ServiceTypeID, &o.TechnicianID, &o.Status,
			&o.ScheduledServiceID, &o.ScheduledFor, &o.TraceKey, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) ListPayments(ctx context.Context, status string, limit, offset int) ([]models.PolicyPayment, error) {
	query := queryListPayments
	var args []any
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	query += fmt.Sprintf(" ORDER BY due_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, clampLimit(limit), clampOffset(offset))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PolicyPayment
	for rows.Next() {
		var p models.PolicyPayment
		if err := rows.Scan(&p.ID, &p.PolicyBillingID, &p.ClientID, &p.Amount, &p.Status,
			&p.DueAt, &p.TraceKey, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListReminders(ctx context.Context, status string, limit, offset int) ([]models.FollowUpReminder, error) {
	query := queryListReminders
	var args []any
	if status != "" {
		args = append(args, strings.ToUpper(status))
		query += " WHERE status = $1"
	}
	query += fmt.Sprintf(" ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, clampLimit(limit), clampOffset(offset))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FollowUpReminder
	for rows.Next() {
		var r models.FollowUpReminder
		if err := rows.Scan(&r.ID, &r.OrderID, &r.ClientID, &r.Message, &r.Status, &r.ScheduledAt, &r.SentAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AssignOrder sets the technician on an order (manual override path).
func (s *Store) AssignOrder(ctx context.Context, orderID, technicianID uuid.UUID) error {
	var exists bool
	if err := s.Pool.QueryRow(ctx, queryTechnicianExists, technicianID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}

	var id uuid.UUID
	return s.Pool.QueryRow(ctx, queryAssignOrder, orderID, technicianID).Scan(&id)
}

func (s *Store) CreateSimulationRun(ctx context.Context, status string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.Pool.QueryRow(ctx, queryCreateSimulationRun, status).Scan(&id)
	return id, err
}

func (s *Store) FinishSimulationRun(ctx context.Context, runID uuid.UUID, status string, summary []byte) error {
	_, err := s.Pool.Exec(ctx, queryFinishSimulationRun, runID, status, summary)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (models.SimulationRun, error) {
	var run models.SimulationRun
	err := s.Pool.QueryRow(ctx, queryLatestSimulationRun).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Summary)
	if err != nil {
		return models.SimulationRun{}, err
	}
	return run, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
