package repository

import (
	"context"
	"database/sql"
	"fmt"

	"eco-dashboard/internal/domain"
)

type PostgresMeasurementsRepo struct {
	db *sql.DB
}

func NewPostgresMeasurementsRepo(db *sql.DB) *PostgresMeasurementsRepo {
	return &PostgresMeasurementsRepo{db: db}
}

var _ MeasurementsRepository = (*PostgresMeasurementsRepo)(nil)

func scanMeasurements(rows *sql.Rows, legacy bool) ([]*domain.Measurement, error) {
	var out []*domain.Measurement
	for rows.Next() {
		var m domain.Measurement
		var num sql.NullFloat64
		err := rows.Scan(
			&m.ID,
			&m.DeviceID,
			&num,
			&m.Timestamp,
			&m.DeviceName,
			&m.Status,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		if legacy {
			m.Reading = num
		} else {
			m.Value = num
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// query runs the measurement listing against the current `value` column,
// retrying the legacy `reading` column when the schema predates the
// rename.
func (r *PostgresMeasurementsRepo) query(ctx context.Context, where string, order string, limitOffset string, args ...any) ([]*domain.Measurement, error) {
	build := func(valueCol string) string {
		return `
		SELECT
			m.measurement_id,
			m.device_id,
			m.` + valueCol + `,
			m.timestamp,
			d.name AS device_name,
			m.status,
			m.created_at,
			m.updated_at,
			m.deleted_at
		FROM measurements m
		JOIN devices d ON m.device_id = d.device_id
		WHERE ` + where + ` AND m.deleted_at IS NULL
		ORDER BY ` + order + limitOffset
	}

	rows, err := r.db.QueryContext(ctx, build("value"), args...)
	if err != nil {
		if !isUndefinedColumn(err) {
			return nil, fmt.Errorf("list measurements: %w", err)
		}
		rows, err = r.db.QueryContext(ctx, build("reading"), args...)
		if err != nil {
			return nil, fmt.Errorf("list legacy measurements: %w", err)
		}
		defer rows.Close()
		return scanMeasurements(rows, true)
	}
	defer rows.Close()
	return scanMeasurements(rows, false)
}

func (r *PostgresMeasurementsRepo) ListByTenant(ctx context.Context, organizationID int64, limit, offset int) ([]*domain.Measurement, error) {
	return r.query(ctx,
		"d.organization_id = $1",
		"m.timestamp DESC",
		" LIMIT $2 OFFSET $3",
		organizationID, limit, offset)
}

func (r *PostgresMeasurementsRepo) CountByTenant(ctx context.Context, organizationID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM measurements m
		JOIN devices d ON m.device_id = d.device_id
		WHERE d.organization_id = $1 AND m.deleted_at IS NULL`,
		organizationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return count, nil
}

func (r *PostgresMeasurementsRepo) Recent(ctx context.Context, organizationID int64, limit int) ([]*domain.Measurement, error) {
	return r.query(ctx,
		"d.organization_id = $1",
		"m.timestamp DESC",
		" LIMIT $2",
		organizationID, limit)
}

func (r *PostgresMeasurementsRepo) ListByDevice(ctx context.Context, deviceID int64) ([]*domain.Measurement, error) {
	return r.query(ctx,
		"m.device_id = $1",
		"m.timestamp DESC",
		"",
		deviceID)
}
