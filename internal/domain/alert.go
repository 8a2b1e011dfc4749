package domain

import (
	"database/sql"
	"strings"
)

// Alert types as stored by the alerting pipeline (not generated here).
const (
	AlertHighConsumption = "HIGH_CONSUMPTION"
	AlertDeviceFailure   = "DEVICE_FAILURE"
	AlertMaintenance     = "MAINTENANCE"
)

// Alert domain model (alerts table). Older rows carry the type in a
// legacy `severity` column instead of `alert_type`; NormalizedType gives
// presentation one stable field.
type Alert struct {
	ID       int64 `db:"alert_id"`
	DeviceID int64 `db:"device_id"`

	AlertType      sql.NullString `db:"alert_type"`
	LegacySeverity sql.NullString `db:"severity"`

	Message    string `db:"message"`
	IsResolved bool   `db:"is_resolved"`

	// DeviceName is populated by the join in list queries.
	DeviceName string `db:"device_name"`

	Base
}

// NormalizedType resolves alert_type, falling back to the legacy
// severity column, "" when both are absent.
func (a *Alert) NormalizedType() string {
	if a.AlertType.Valid && a.AlertType.String != "" {
		return a.AlertType.String
	}
	if a.LegacySeverity.Valid {
		return a.LegacySeverity.String
	}
	return ""
}

// SeverityBucket is the case-normalized roll-up key for this alert.
func (a *Alert) SeverityBucket() string {
	return strings.ToUpper(a.NormalizedType())
}

// ToJSON shapes the alert for HTTP responses, with alert_type already
// normalized.
func (a *Alert) ToJSON() map[string]any {
	return map[string]any{
		"alert_id":    a.ID,
		"device_id":   a.DeviceID,
		"device_name": a.DeviceName,
		"alert_type":  a.NormalizedType(),
		"message":     a.Message,
		"is_resolved": a.IsResolved,
		"created_at":  a.CreatedAt.Format(TimestampLayout),
	}
}
