package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/fieldops/backend/internal/config"
	"github.com/fieldops/backend/internal/db"
	"github.com/fieldops/backend/internal/http/handlers"
	"github.com/fieldops/backend/internal/http/middleware"
	"github.com/fieldops/backend/internal/service"

	_ "github.com/fieldops/backend/docs"
)

func Router(cfg config.Config, store *db.Store, suggestions *service.SuggestionService, simulator *service.SimulationService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:       store,
		Suggestions: suggestions,
		Simulator:   simulator,
		Validator:   validator.New(),
		Logger:      logger,
		AdminKey:    cfg.AdminKey,

		DefaultStepMinutes: cfg.StepMinutes,
		MaxAdvanceDays:     cfg.MaxAdvanceDays,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/suggestions/technicians", h.SuggestTechnicians)
		api.GET("/suggestions/fleets", h.SuggestFleets)
		api.GET("/orders", h.OrdersList)
		api.GET("/payments", h.PaymentsList)
		api.GET("/reminders", h.RemindersList)
		api.GET("/runs/latest", h.RunsLatest)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/simulate", h.Simulate)
		admin.POST("/orders/:id/assign", h.AssignOrder)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
