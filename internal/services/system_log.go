package services

import (
	"encoding/json"
	"time"

	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/pkg/logger"
)

// logRetentionDays is how long system log rows are kept.
const logRetentionDays = 90

// writeSystemLog persists one log row. Failures are reported to the
// process log only; audit logging never fails the request it describes.
func writeSystemLog(level, module, action, message, subject, ip, userAgent string, extra map[string]interface{}) {
	db := models.GetDB()
	if db == nil {
		return
	}

	var extraJSON string
	if len(extra) > 0 {
		if data, err := json.Marshal(extra); err == nil {
			extraJSON = string(data)
		}
	}

	entry := models.SystemLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		Subject:   subject,
		IP:        ip,
		UserAgent: userAgent,
		Extra:     extraJSON,
	}
	if err := db.Create(&entry).Error; err != nil {
		logger.Get().Error().Err(err).Msg("Failed to write system log")
	}
}

func LogInfo(module, action, message, subject, ip, userAgent string, extra map[string]interface{}) {
	writeSystemLog("info", module, action, message, subject, ip, userAgent, extra)
}

func LogWarning(module, action, message, subject, ip, userAgent string, extra map[string]interface{}) {
	writeSystemLog("warning", module, action, message, subject, ip, userAgent, extra)
}

func LogError(module, action, message, subject, ip, userAgent string, extra map[string]interface{}) {
	writeSystemLog("error", module, action, message, subject, ip, userAgent, extra)
}

// SystemLogListParams filters the admin log listing.
type SystemLogListParams struct {
	Page     int
	PageSize int
	Level    string
	Module   string
	Subject  string
}

type SystemLogListResult struct {
	Items []models.SystemLog `json:"items"`
	Total int64              `json:"total"`
}

// ListSystemLogs returns the paginated log view, newest first.
func ListSystemLogs(params SystemLogListParams) (*SystemLogListResult, error) {
	db := models.GetDB()

	query := db.Model(&models.SystemLog{})
	if params.Level != "" {
		query = query.Where("level = ?", params.Level)
	}
	if params.Module != "" {
		query = query.Where("module = ?", params.Module)
	}
	if params.Subject != "" {
		query = query.Where("subject = ?", params.Subject)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 50
	}
	offset := (params.Page - 1) * params.PageSize

	var logs []models.SystemLog
	if err := query.Offset(offset).Limit(params.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &SystemLogListResult{Items: logs, Total: total}, nil
}

// CleanupOldLogs deletes rows past the retention window and returns the
// number removed.
func CleanupOldLogs() (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -logRetentionDays).UnixMilli()
	result := models.GetDB().Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartLogCleanup runs CleanupOldLogs daily.
func StartLogCleanup() {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			removed, err := CleanupOldLogs()
			if err != nil {
				logger.Get().Error().Err(err).Msg("System log cleanup failed")
				continue
			}
			if removed > 0 {
				logger.Get().Info().Int64("removed", removed).Msg("System log cleanup done")
			}
		}
	}()
}
