package repository

import (
	"context"
	"database/sql"
	"fmt"

	"eco-dashboard/internal/domain"
)

type PostgresAlertsRepo struct {
	db *sql.DB
}

func NewPostgresAlertsRepo(db *sql.DB) *PostgresAlertsRepo {
	return &PostgresAlertsRepo{db: db}
}

var _ AlertsRepository = (*PostgresAlertsRepo)(nil)

func scanAlerts(rows *sql.Rows, legacy bool) ([]*domain.Alert, error) {
	var out []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		var typ sql.NullString
		err := rows.Scan(
			&a.ID,
			&a.DeviceID,
			&typ,
			&a.Message,
			&a.IsResolved,
			&a.DeviceName,
			&a.Status,
			&a.CreatedAt,
			&a.UpdatedAt,
			&a.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if legacy {
			a.LegacySeverity = typ
		} else {
			a.AlertType = typ
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// query lists alerts through the tenant chain, retrying against the
// legacy `severity` column when `alert_type` does not exist.
func (r *PostgresAlertsRepo) query(ctx context.Context, where string, limitOffset string, args ...any) ([]*domain.Alert, error) {
	build := func(typeCol string) string {
		return `
		SELECT
			a.alert_id,
			a.device_id,
			a.` + typeCol + `,
			a.message,
			a.is_resolved,
			d.name AS device_name,
			a.status,
			a.created_at,
			a.updated_at,
			a.deleted_at
		FROM alerts a
		JOIN devices d ON a.device_id = d.device_id
		WHERE ` + where + ` AND a.deleted_at IS NULL
		ORDER BY a.created_at DESC` + limitOffset
	}

	rows, err := r.db.QueryContext(ctx, build("alert_type"), args...)
	if err != nil {
		if !isUndefinedColumn(err) {
			return nil, fmt.Errorf("list alerts: %w", err)
		}
		rows, err = r.db.QueryContext(ctx, build("severity"), args...)
		if err != nil {
			return nil, fmt.Errorf("list legacy alerts: %w", err)
		}
		defer rows.Close()
		return scanAlerts(rows, true)
	}
	defer rows.Close()
	return scanAlerts(rows, false)
}

func (r *PostgresAlertsRepo) ListByTenant(ctx context.Context, organizationID int64, limit, offset int) ([]*domain.Alert, error) {
	return r.query(ctx, "d.organization_id = $1", " LIMIT $2 OFFSET $3", organizationID, limit, offset)
}

func (r *PostgresAlertsRepo) CountByTenant(ctx context.Context, organizationID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM alerts a
		JOIN devices d ON a.device_id = d.device_id
		WHERE d.organization_id = $1 AND a.deleted_at IS NULL`,
		organizationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return count, nil
}

func (r *PostgresAlertsRepo) Recent(ctx context.Context, organizationID int64, limit int) ([]*domain.Alert, error) {
	return r.query(ctx, "d.organization_id = $1", " LIMIT $2", organizationID, limit)
}

func (r *PostgresAlertsRepo) CountBySeverity(ctx context.Context, organizationID int64) ([]SeverityCount, error) {
	build := func(typeCol string) string {
		return `
		SELECT a.` + typeCol + `, COUNT(a.alert_id)
		FROM alerts a
		JOIN devices d ON a.device_id = d.device_id
		WHERE d.organization_id = $1 AND a.deleted_at IS NULL
		GROUP BY a.` + typeCol
	}

	rows, err := r.db.QueryContext(ctx, build("alert_type"), organizationID)
	if err != nil {
		if !isUndefinedColumn(err) {
			return nil, fmt.Errorf("count alerts by severity: %w", err)
		}
		rows, err = r.db.QueryContext(ctx, build("severity"), organizationID)
		if err != nil {
			return nil, fmt.Errorf("count alerts by legacy severity: %w", err)
		}
	}
	defer rows.Close()

	var out []SeverityCount
	for rows.Next() {
		var label sql.NullString
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan severity count: %w", err)
		}
		out = append(out, SeverityCount{Label: label.String, Count: count})
	}
	return out, rows.Err()
}

func (r *PostgresAlertsRepo) ListByDevice(ctx context.Context, deviceID int64) ([]*domain.Alert, error) {
	return r.query(ctx, "a.device_id = $1", "", deviceID)
}
