package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/config"
	"github.com/softdesk/softdesk-api/internal/middleware"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/softdesk/softdesk-api/internal/utils"
	"github.com/softdesk/softdesk-api/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds the shared dependencies of the HTTP server.
type appServices struct {
	cfg          *config.Config
	db           *gorm.DB
	registry     *prometheus.Registry
	gate         *authz.Gate
	httpMetrics  *middleware.HTTPMetrics
	tokenLimiter *middleware.RateLimiter
	maintenance  *services.MaintenanceService
}

// bootstrap connects and migrates the database, then wires the services.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	svc := newAppServices(cfg, models.GetDB())
	if err := svc.maintenance.StartScheduler(); err != nil {
		logger.Fatalf("Failed to start maintenance scheduler: %v", err)
	}
	return svc
}

// newAppServices wires everything on top of an open database. It starts no
// background work besides the rate limiter sweep.
func newAppServices(cfg *config.Config, db *gorm.DB) *appServices {
	services.InitSystemLogger(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := &appServices{
		cfg:         cfg,
		db:          db,
		registry:    registry,
		gate:        authz.NewGate(authz.NewDBResolver(db), authz.NewMetrics(registry)),
		httpMetrics: middleware.NewHTTPMetrics(registry),
		maintenance: services.NewMaintenanceService(db, &cfg.Maintenance, services.NewAuthService(db, &cfg.JWT)),
	}
	if cfg.RateLimit.Enabled {
		svc.tokenLimiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	return svc
}

// shutdown stops background work.
func (s *appServices) shutdown() {
	s.maintenance.StopScheduler()
	if s.tokenLimiter != nil {
		s.tokenLimiter.Stop()
	}
	logger.Info().Msg("background jobs stopped")
}
