package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/pkg/logger"
	"gorm.io/gorm"
)

var globalDB *gorm.DB

// InitSystemLogger sets the database the audit helpers write to. Until it is
// called the helpers are no-ops.
func InitSystemLogger(db *gorm.DB) {
	globalDB = db
}

// AuditEntry describes one audited request.
type AuditEntry struct {
	Module     string
	Action     string
	Message    string
	UserID     *uint
	IP         string
	UserAgent  string
	StatusCode int
	Extra      interface{}
}

func LogInfo(e AuditEntry)    { writeLog("info", e) }
func LogWarning(e AuditEntry) { writeLog("warning", e) }
func LogError(e AuditEntry)   { writeLog("error", e) }

func writeLog(level string, e AuditEntry) {
	if globalDB == nil {
		return
	}

	var extraStr string
	if e.Extra != nil {
		if b, err := json.Marshal(e.Extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.SystemLog{
		Level:      level,
		Module:     e.Module,
		Action:     e.Action,
		Message:    e.Message,
		UserID:     e.UserID,
		IP:         e.IP,
		UserAgent:  truncate(e.UserAgent, 500),
		StatusCode: e.StatusCode,
		Extra:      extraStr,
		CreatedAt:  time.Now(),
	}
	if err := globalDB.Create(entry).Error; err != nil {
		logger.Warn().Err(err).Str("module", e.Module).Msg("failed to write audit log")
	}
}

type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

// CleanupOldLogs deletes logs older than the specified number of days
// Returns the number of deleted records
func (s *SystemLogService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoffTime := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoffTime).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
