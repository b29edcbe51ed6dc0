package db

// Active order statuses count toward a candidate's workload; completed
// and cancelled orders do not.
const activeStatusList = `('PENDING','EN_ROUTE','IN_PROGRESS')`

const queryGetServiceType = `
SELECT id, name, base_price, active, created_at
FROM service_types
WHERE id = $1`

const queryTechnicianCandidates = `
SELECT t.id, t.name, t.available, t.years_experience, ts.skill_level,
       COUNT(o.id) AS active_orders
FROM technicians t
JOIN technician_skills ts ON ts.technician_id = t.id AND ts.service_type_id = $1
LEFT JOIN service_orders o ON o.technician_id = t.id AND o.status IN ` + activeStatusList + `
WHERE t.available
GROUP BY t.id, t.name, t.available, t.years_experience, ts.skill_level
ORDER BY t.id`

const queryFleetCandidates = `
SELECT f.id, f.name,
       COALESCE(AVG(ts.skill_level), 0) AS avg_skill,
       COUNT(DISTINCT t.id) FILTER (WHERE t.available) AS available_technicians,
       COUNT(DISTINCT t.id) AS total_technicians,
       COUNT(o.id) AS active_orders
FROM fleets f
JOIN technicians t ON t.fleet_id = f.id
LEFT JOIN technician_skills ts ON ts.technician_id = t.id AND ts.service_type_id = $1
LEFT JOIN service_orders o ON o.technician_id = t.id AND o.status IN ` + activeStatusList + `
WHERE f.active
GROUP BY f.id, f.name
ORDER BY f.id`

const queryDueScheduledServices = `
SELECT id, policy_client_id, client_id, service_type_id, frequency_type, frequency_value, next_run, is_active
FROM scheduled_services
WHERE is_active AND next_run <= $1
ORDER BY next_run, id`

const queryDuePolicyBillings = `
SELECT id, policy_client_id, client_id, amount, frequency_type, frequency_value, next_billing_run, is_active
FROM policy_billings
WHERE is_active AND next_billing_run <= $1
ORDER BY next_billing_run, id`

const queryDueFollowUpReminders = `
SELECT r.id, r.order_id, r.client_id, COALESCE(c.email, ''), r.message, r.status, r.scheduled_at
FROM follow_up_reminders r
LEFT JOIN clients c ON c.id = r.client_id
WHERE r.status = 'PENDING' AND r.scheduled_at <= $1
ORDER BY r.scheduled_at, r.id`

// The (scheduled_service_id, scheduled_for) unique index is the
// duplicate-firing guard: a replayed window inserts nothing.
const queryInsertScheduledOrder = `
INSERT INTO service_orders (id, client_id, service_type_id, status, scheduled_service_id, scheduled_for, trace_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (scheduled_service_id, scheduled_for) WHERE scheduled_service_id IS NOT NULL DO NOTHING
RETURNING id`

const queryInsertOrderItem = `
INSERT INTO order_items (id, order_id, service_type_id, description, unit_price, quantity)
VALUES ($1, $2, $3, $4, $5, $6)`

const queryAdvanceScheduledService = `
UPDATE scheduled_services SET next_run = $2 WHERE id = $1 AND next_run < $2`

const queryInsertPolicyPayment = `
INSERT INTO policy_payments (id, policy_billing_id, client_id, amount, status, due_at, trace_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (policy_billing_id, due_at) DO NOTHING
RETURNING id`

const queryAdvancePolicyBilling = `
UPDATE policy_billings SET next_billing_run = $2 WHERE id = $1 AND next_billing_run < $2`

const queryMarkReminderSent = `
UPDATE follow_up_reminders SET status = 'SENT', sent_at = $2 WHERE id = $1 AND status = 'PENDING'`

const queryListOrders = `
SELECT id, client_id, service_type_id, technician_id, status, scheduled_service_id, scheduled_for, trace_key, created_at
FROM service_orders`

const queryListPayments = `
SELECT id, policy_billing_id, client_id, amount, status, due_at, trace_key, created_at
FROM policy_payments`

const queryListReminders = `
SELECT id, order_id, client_id, message, status, scheduled_at, sent_at
FROM follow_up_reminders`

const queryAssignOrder = `
UPDATE service_orders SET technician_id = $2 WHERE id = $1 RETURNING id`

const queryTechnicianExists = `
SELECT EXISTS (SELECT 1 FROM technicians WHERE id = $1)`

const queryCreateSimulationRun = `
INSERT INTO simulation_runs (status, started_at) VALUES ($1, NOW()) RETURNING id`

const queryFinishSimulationRun = `
UPDATE simulation_runs SET status = $2, summary = $3, finished_at = NOW() WHERE id = $1`

const queryLatestSimulationRun = `
SELECT id, started_at, finished_at, status, summary
FROM simulation_runs
ORDER BY started_at DESC
LIMIT 1`
