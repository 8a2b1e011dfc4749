package repository

import (
	"context"
	"database/sql"
	"fmt"

	"eco-dashboard/internal/domain"
)

type PostgresDevicesRepo struct {
	db *sql.DB
}

func NewPostgresDevicesRepo(db *sql.DB) *PostgresDevicesRepo {
	return &PostgresDevicesRepo{db: db}
}

var _ DevicesRepository = (*PostgresDevicesRepo)(nil)

// groupedCounts runs a label/count query and collects the rows. label is
// nullable on the joined shape.
func (r *PostgresDevicesRepo) groupedCounts(ctx context.Context, query string, organizationID int64) ([]CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var label sql.NullString
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan grouped count: %w", err)
		}
		out = append(out, CategoryCount{Label: label.String, Count: count})
	}
	return out, rows.Err()
}

// CountByCategory groups by the joined category name. On schemas where
// category is still a plain scalar column the join query fails with
// undefined_column, and the legacy grouping runs instead.
func (r *PostgresDevicesRepo) CountByCategory(ctx context.Context, organizationID int64) ([]CategoryCount, error) {
	counts, err := r.groupedCounts(ctx, `
		SELECT c.name, COUNT(d.device_id)
		FROM devices d
		LEFT JOIN categories c ON d.category_id = c.category_id
		WHERE d.organization_id = $1 AND d.deleted_at IS NULL
		GROUP BY c.name`, organizationID)
	if err == nil {
		return counts, nil
	}
	if !isUndefinedColumn(err) {
		return nil, fmt.Errorf("count devices by category: %w", err)
	}
	counts, err = r.groupedCounts(ctx, `
		SELECT d.category, COUNT(d.device_id)
		FROM devices d
		WHERE d.organization_id = $1 AND d.deleted_at IS NULL
		GROUP BY d.category`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("count devices by legacy category: %w", err)
	}
	return counts, nil
}

func (r *PostgresDevicesRepo) CountByZone(ctx context.Context, organizationID int64) ([]CategoryCount, error) {
	counts, err := r.groupedCounts(ctx, `
		SELECT z.name, COUNT(d.device_id)
		FROM devices d
		LEFT JOIN zones z ON d.zone_id = z.zone_id
		WHERE d.organization_id = $1 AND d.deleted_at IS NULL
		GROUP BY z.name`, organizationID)
	if err == nil {
		return counts, nil
	}
	if !isUndefinedColumn(err) {
		return nil, fmt.Errorf("count devices by zone: %w", err)
	}
	counts, err = r.groupedCounts(ctx, `
		SELECT d.zone, COUNT(d.device_id)
		FROM devices d
		WHERE d.organization_id = $1 AND d.deleted_at IS NULL
		GROUP BY d.zone`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("count devices by legacy zone: %w", err)
	}
	return counts, nil
}

const deviceColumns = `
	d.device_id,
	d.name,
	d.max_consumption,
	d.category_id,
	d.zone_id,
	d.organization_id,
	c.name  AS category_label,
	z.name  AS zone_label,
	d.status,
	d.created_at,
	d.updated_at,
	d.deleted_at`

const deviceJoins = `
	FROM devices d
	LEFT JOIN categories c ON d.category_id = c.category_id
	LEFT JOIN zones z      ON d.zone_id = z.zone_id`

// legacyDeviceColumns selects the pre-rename shape: category and zone
// are plain text columns on the devices table, no FK ids to join.
const legacyDeviceColumns = `
	d.device_id,
	d.name,
	d.max_consumption,
	NULL::bigint AS category_id,
	NULL::bigint AS zone_id,
	d.organization_id,
	d.category AS category_label,
	d.zone     AS zone_label,
	d.status,
	d.created_at,
	d.updated_at,
	d.deleted_at`

func scanDevices(rows *sql.Rows) ([]*domain.Device, error) {
	var out []*domain.Device
	for rows.Next() {
		var d domain.Device
		err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.MaxConsumption,
			&d.CategoryID,
			&d.ZoneID,
			&d.OrganizationID,
			&d.CategoryLabel,
			&d.ZoneLabel,
			&d.Status,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// List queries the joined category/zone shape, retrying against the
// legacy scalar columns on undefined_column so the listing keeps working
// on pre-rename schemas.
func (r *PostgresDevicesRepo) List(ctx context.Context, organizationID int64, categoryFilter string) ([]*domain.Device, error) {
	query := `SELECT ` + deviceColumns + deviceJoins + `
		WHERE d.organization_id = $1 AND d.deleted_at IS NULL`
	args := []any{organizationID}
	if categoryFilter != "" {
		query += ` AND c.name = $2`
		args = append(args, categoryFilter)
	}
	query += ` ORDER BY d.name`

	devices, err := r.queryDevices(ctx, query, args...)
	if err == nil {
		return devices, nil
	}
	if !isUndefinedColumn(err) {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	legacy := `SELECT ` + legacyDeviceColumns + `
		FROM devices d
		WHERE d.organization_id = $1 AND d.deleted_at IS NULL`
	if categoryFilter != "" {
		legacy += ` AND d.category = $2`
	}
	legacy += ` ORDER BY d.name`
	devices, err = r.queryDevices(ctx, legacy, args...)
	if err != nil {
		return nil, fmt.Errorf("list legacy devices: %w", err)
	}
	return devices, nil
}

func (r *PostgresDevicesRepo) queryDevices(ctx context.Context, query string, args ...any) ([]*domain.Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	devices, err := scanDevices(rows)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []*domain.Device{}
	}
	return devices, nil
}

func (r *PostgresDevicesRepo) DistinctCategoryLabels(ctx context.Context, organizationID int64) ([]string, error) {
	labels, err := r.queryLabels(ctx, `
		SELECT DISTINCT c.name
		FROM devices d
		JOIN categories c ON d.category_id = c.category_id
		WHERE d.organization_id = $1 AND d.deleted_at IS NULL
		ORDER BY c.name`, organizationID)
	if err == nil {
		return labels, nil
	}
	if !isUndefinedColumn(err) {
		return nil, fmt.Errorf("distinct category labels: %w", err)
	}
	labels, err = r.queryLabels(ctx, `
		SELECT DISTINCT d.category
		FROM devices d
		WHERE d.organization_id = $1 AND d.deleted_at IS NULL AND d.category IS NOT NULL
		ORDER BY d.category`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("distinct legacy category labels: %w", err)
	}
	return labels, nil
}

func (r *PostgresDevicesRepo) queryLabels(ctx context.Context, query string, organizationID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan category label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// Get resolves the device only within the tenant. A cross-tenant id and
// an absent id return the same domain.ErrNotFound. The joined query
// falls back to the legacy scalar shape like List.
func (r *PostgresDevicesRepo) Get(ctx context.Context, organizationID, deviceID int64) (*domain.Device, error) {
	devices, err := r.queryDevices(ctx, `SELECT `+deviceColumns+deviceJoins+`
		WHERE d.device_id = $1 AND d.organization_id = $2 AND d.deleted_at IS NULL`,
		deviceID, organizationID)
	if err != nil {
		if !isUndefinedColumn(err) {
			return nil, fmt.Errorf("get device: %w", err)
		}
		devices, err = r.queryDevices(ctx, `SELECT `+legacyDeviceColumns+`
			FROM devices d
			WHERE d.device_id = $1 AND d.organization_id = $2 AND d.deleted_at IS NULL`,
			deviceID, organizationID)
		if err != nil {
			return nil, fmt.Errorf("get legacy device: %w", err)
		}
	}
	if len(devices) == 0 {
		return nil, domain.ErrNotFound
	}
	return devices[0], nil
}
