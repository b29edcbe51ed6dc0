package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/fieldops/backend/internal/db"
	"github.com/fieldops/backend/internal/models"
	"github.com/fieldops/backend/internal/service"
)

type Handler struct {
	Store       *db.Store
	Suggestions *service.SuggestionService
	Simulator   *service.SimulationService
	Validator   *validator.Validate
	Logger      zerolog.Logger
	AdminKey    string

	// Operational limits, from config.
	DefaultStepMinutes int
	MaxAdvanceDays     int
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Suggest technicians for a service type
// @Description Ranked technician suggestions, best candidate first. An empty list means no automatic recommendation; callers fall back to manual assignment.
// @Tags suggestions
// @Produce json
// @Param service_type_id query string true "Service type ID"
// @Param delivery_date query string false "Target date (RFC3339), reserved for availability filtering"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/suggestions/technicians [get]
func (h *Handler) SuggestTechnicians(c *gin.Context) {
	h.suggest(c, h.Suggestions.SuggestTechnicians)
}

// @Summary Suggest fleets for a service type
// @Tags suggestions
// @Produce json
// @Param service_type_id query string true "Service type ID"
// @Param delivery_date query string false "Target date (RFC3339)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/suggestions/fleets [get]
func (h *Handler) SuggestFleets(c *gin.Context) {
	h.suggest(c, h.Suggestions.SuggestFleets)
}

func (h *Handler) suggest(c *gin.Context, rank func(context.Context, uuid.UUID, *time.Time) ([]models.Suggestion, error)) {
	serviceTypeID, err := uuid.Parse(strings.TrimSpace(c.Query("service_type_id")))
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "service_type_id must be a valid UUID", nil)
		return
	}

	var deliveryDate *time.Time
	if raw := strings.TrimSpace(c.Query("delivery_date")); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "delivery_date must be RFC3339 or YYYY-MM-DD", nil)
			return
		}
		deliveryDate = &parsed
	}

	items, err := rank(c.Request.Context(), serviceTypeID, deliveryDate)
	if err != nil {
		if errors.Is(err, service.ErrServiceTypeNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Service type not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to rank candidates", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

type SimulateRequest struct {
	From             *time.Time `json:"from_instant"`
	DaysToAdvance    int        `json:"days_to_advance" validate:"gte=0,lte=365"`
	MinutesToAdvance int        `json:"minutes_to_advance" validate:"gte=0"`
	StepMinutes      int        `json:"step_minutes" validate:"gte=0,lte=1440"`
	SimulateEvents   bool       `json:"simulate_events"`
}

// @Summary Advance the schedule
// @Description Walks the virtual clock over the requested window, materializing due scheduled services, policy billings and follow-up reminders. With simulate_events=false the run is a dry run.
// @Tags simulation
// @Accept json
// @Produce json
// @Param request body SimulateRequest true "Advance window"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/simulate [post]
func (h *Handler) Simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if h.MaxAdvanceDays > 0 && req.DaysToAdvance > h.MaxAdvanceDays {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("days_to_advance exceeds the configured maximum of %d", h.MaxAdvanceDays), nil)
		return
	}
	if req.StepMinutes == 0 {
		req.StepMinutes = h.DefaultStepMinutes
	}

	runID, err := h.Store.CreateSimulationRun(c.Request.Context(), "RUNNING")
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to create simulation run")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create run", err.Error())
		return
	}

	result, err := h.Simulator.Advance(c.Request.Context(), service.AdvanceRequest{
		From:             req.From,
		DaysToAdvance:    req.DaysToAdvance,
		MinutesToAdvance: req.MinutesToAdvance,
		StepMinutes:      req.StepMinutes,
		SimulateEvents:   req.SimulateEvents,
	})
	status := "SUCCESS"
	if err != nil {
		status = "FAILED"
	}
	summary, _ := json.Marshal(result)
	if finishErr := h.Store.FinishSimulationRun(c.Request.Context(), runID, status, summary); finishErr != nil {
		h.Logger.Error().Err(finishErr).Msg("failed to finish simulation run")
	}

	if err != nil {
		h.Logger.Error().Err(err).Msg("simulation aborted")
		writeError(c, http.StatusInternalServerError, "SIMULATION_ERROR", "Simulation aborted", gin.H{
			"error":   err.Error(),
			"partial": result,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Latest simulation run
// @Tags simulation
// @Produce json
// @Success 200 {object} models.SimulationRun
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	run, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) OrdersList(c *gin.Context) {
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListOrders(c.Request.Context(), status, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list orders", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) PaymentsList(c *gin.Context) {
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListPayments(c.Request.Context(), status, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list payments", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) RemindersList(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListReminders(c.Request.Context(), status, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list reminders", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

type AssignRequest struct {
	TechnicianID string `json:"technician_id" validate:"required,uuid4"`
}

// @Summary Assign a technician to an order
// @Description Manual override path; used when no automatic suggestion is available or the dispatcher picks someone else.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body AssignRequest true "Technician"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/orders/{id}/assign [post]
func (h *Handler) AssignOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "order id must be a valid UUID", nil)
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	technicianID, _ := uuid.Parse(req.TechnicianID)

	if err := h.Store.AssignOrder(c.Request.Context(), orderID, technicianID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Order or technician not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to assign order", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "order_id": orderID, "technician_id": technicianID})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
