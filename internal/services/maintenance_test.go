package services

import (
	"context"
	"testing"
	"time"

	"github.com/softdesk/softdesk-api/internal/config"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceService_RunPurges(t *testing.T) {
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "alice")
	require.NoError(t, db.Create(&models.RefreshToken{UserID: u.ID, TokenHash: "expired", ExpiresAt: time.Now().Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.RefreshToken{UserID: u.ID, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Level: "info", Module: "project", CreatedAt: time.Now().AddDate(0, 0, -40)}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Level: "info", Module: "project", CreatedAt: time.Now()}).Error)

	cfg := &config.MaintenanceConfig{Enabled: true, Schedule: "@daily", LogRetentionDays: 30}
	svc := NewMaintenanceService(db, cfg, NewAuthService(db, &config.JWTConfig{}))

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.RefreshTokens)
	assert.EqualValues(t, 1, report.AuditLogs)
	assert.False(t, report.Skipped)
}

func TestMaintenanceService_RunLockedOncePerHour(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.MaintenanceConfig{Enabled: true, Schedule: "@hourly", LogRetentionDays: 30}
	auth := NewAuthService(db, &config.JWTConfig{})
	now := time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)

	first := NewMaintenanceService(db, cfg, auth)
	first.now = func() time.Time { return now }
	second := NewMaintenanceService(db, cfg, auth)
	second.now = func() time.Time { return now }
	second.instance = "replica-2"

	report, err := first.RunLocked(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Skipped)

	report, err = second.RunLocked(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Skipped)

	var locks []models.SchedulerLock
	require.NoError(t, db.Find(&locks).Error)
	require.Len(t, locks, 1)
	assert.Equal(t, "2024-06-01T10", locks[0].LockKey)
}

func TestMaintenanceService_InvalidSchedule(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.MaintenanceConfig{Enabled: true, Schedule: "not a schedule"}
	svc := NewMaintenanceService(db, cfg, NewAuthService(db, &config.JWTConfig{}))

	assert.Error(t, svc.StartScheduler())
}

func TestMaintenanceService_DisabledSchedulerIsNoop(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewMaintenanceService(db, &config.MaintenanceConfig{}, NewAuthService(db, &config.JWTConfig{}))

	require.NoError(t, svc.StartScheduler())
	svc.StopScheduler()
}
