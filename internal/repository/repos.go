package repository

import (
	"context"

	"eco-dashboard/internal/domain"
)

// Repository interfaces use strongly typed domain models. Every
// tenant-scoped operation takes the resolved organization id and filters
// on the Device -> Organization chain; callers never pass a
// client-supplied tenant without session validation.

type OrganizationsRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Organization, error)
	GetByID(ctx context.Context, id int64) (*domain.Organization, error)
	// Create persists a new organization; unique name/email violations
	// surface as domain.ErrDuplicateEntity.
	Create(ctx context.Context, org *domain.Organization) (int64, error)
}

// CategoryCount is one row of a device grouping query.
type CategoryCount struct {
	Label string
	Count int
}

type DevicesRepository interface {
	// CountByCategory groups the tenant's non-deleted devices by
	// category display label. Unresolvable labels come back empty; the
	// service maps them to the sentinel.
	CountByCategory(ctx context.Context, organizationID int64) ([]CategoryCount, error)
	CountByZone(ctx context.Context, organizationID int64) ([]CategoryCount, error)

	// List returns the tenant's devices, optionally restricted to an
	// exact category label. An unmatched filter yields an empty slice.
	List(ctx context.Context, organizationID int64, categoryFilter string) ([]*domain.Device, error)
	DistinctCategoryLabels(ctx context.Context, organizationID int64) ([]string, error)

	// Get returns domain.ErrNotFound both for an absent id and for a
	// device owned by another tenant.
	Get(ctx context.Context, organizationID, deviceID int64) (*domain.Device, error)
}

type MeasurementsRepository interface {
	// ListByTenant returns measurements for devices owned by the tenant,
	// newest-first by capture timestamp, with the device name joined in.
	ListByTenant(ctx context.Context, organizationID int64, limit, offset int) ([]*domain.Measurement, error)
	CountByTenant(ctx context.Context, organizationID int64) (int, error)
	Recent(ctx context.Context, organizationID int64, limit int) ([]*domain.Measurement, error)
	ListByDevice(ctx context.Context, deviceID int64) ([]*domain.Measurement, error)
}

// SeverityCount is one row of the alert grouping query; Label keeps the
// original casing from storage.
type SeverityCount struct {
	Label string
	Count int
}

type AlertsRepository interface {
	ListByTenant(ctx context.Context, organizationID int64, limit, offset int) ([]*domain.Alert, error)
	CountByTenant(ctx context.Context, organizationID int64) (int, error)
	Recent(ctx context.Context, organizationID int64, limit int) ([]*domain.Alert, error)
	CountBySeverity(ctx context.Context, organizationID int64) ([]SeverityCount, error)
	ListByDevice(ctx context.Context, deviceID int64) ([]*domain.Alert, error)
}
