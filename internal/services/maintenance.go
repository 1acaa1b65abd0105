package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/softdesk/softdesk-api/internal/config"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/pkg/logger"
	"gorm.io/gorm"
)

const maintenanceLock = "maintenance"

// MaintenanceReport summarizes one purge run.
type MaintenanceReport struct {
	RefreshTokens int64 `json:"refresh_tokens"`
	AuditLogs     int64 `json:"audit_logs"`
	Skipped       bool  `json:"skipped"`
}

// MaintenanceService purges expired refresh tokens and old audit logs on a
// cron schedule. It never touches tracker entities.
type MaintenanceService struct {
	db            *gorm.DB
	cfg           *config.MaintenanceConfig
	auth          *AuthService
	logs          *SystemLogService
	cronScheduler *cron.Cron
	instance      string
	now           func() time.Time
}

func NewMaintenanceService(db *gorm.DB, cfg *config.MaintenanceConfig, auth *AuthService) *MaintenanceService {
	host, _ := os.Hostname()
	return &MaintenanceService{
		db:       db,
		cfg:      cfg,
		auth:     auth,
		logs:     NewSystemLogService(db),
		instance: fmt.Sprintf("%s-%d", host, os.Getpid()),
		now:      time.Now,
	}
}

// StartScheduler registers the purge job and starts the cron runner.
func (s *MaintenanceService) StartScheduler() error {
	if !s.cfg.Enabled {
		logger.Info().Msg("maintenance scheduler disabled")
		return nil
	}
	s.cronScheduler = cron.New()
	if _, err := s.cronScheduler.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.RunLocked(context.Background()); err != nil {
			logger.Error().Err(err).Msg("maintenance run failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cronScheduler.Start()
	logger.Info().Str("schedule", s.cfg.Schedule).Msg("maintenance scheduler started")
	return nil
}

func (s *MaintenanceService) StopScheduler() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
	}
}

// RunLocked performs the purge unless another instance already took the
// current hour's run.
func (s *MaintenanceService) RunLocked(ctx context.Context) (*MaintenanceReport, error) {
	now := s.now()
	acquired, err := s.acquire(ctx, now.UTC().Format("2006-01-02T15"), now)
	if err != nil {
		return nil, err
	}
	if !acquired {
		logger.Debug().Msg("maintenance run already taken by another instance")
		return &MaintenanceReport{Skipped: true}, nil
	}
	return s.Run(ctx)
}

// Run performs the purge immediately.
func (s *MaintenanceService) Run(ctx context.Context) (*MaintenanceReport, error) {
	report := &MaintenanceReport{}
	var err error

	report.RefreshTokens, err = s.auth.PurgeRefreshTokens(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("purge refresh tokens: %w", err)
	}
	report.AuditLogs, err = s.logs.CleanupOldLogs(ctx, s.cfg.LogRetentionDays)
	if err != nil {
		return nil, fmt.Errorf("purge audit logs: %w", err)
	}

	logger.Info().
		Int64("refresh_tokens", report.RefreshTokens).
		Int64("audit_logs", report.AuditLogs).
		Msg("maintenance run finished")
	LogInfo(AuditEntry{
		Module:  "maintenance",
		Action:  "purge",
		Message: fmt.Sprintf("purged %d refresh tokens and %d audit logs", report.RefreshTokens, report.AuditLogs),
		Extra:   report,
	})
	return report, nil
}

func (s *MaintenanceService) acquire(ctx context.Context, key string, now time.Time) (bool, error) {
	db := s.db.WithContext(ctx)
	if err := db.Where("expires_at < ?", now).Delete(&models.SchedulerLock{}).Error; err != nil {
		return false, err
	}
	lock := models.SchedulerLock{
		LockName:  maintenanceLock,
		LockKey:   key,
		LockedBy:  s.instance,
		LockedAt:  now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	if err := db.Create(&lock).Error; err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
