package domain

import "database/sql"

// Sentinel labels for devices whose taxonomy reference cannot be
// resolved to a display name.
const (
	LabelNoCategory = "Sin categoría"
	LabelNoZone     = "Sin zona"
)

// Device domain model (devices table). Category/zone may live behind a
// foreign key or, on older schemas, as a plain scalar column; the repos
// populate CategoryLabel/ZoneLabel from whichever shape exists and the
// accessor methods resolve the fallback exactly once.
type Device struct {
	ID             int64   `db:"device_id"`
	Name           string  `db:"name"`
	MaxConsumption float64 `db:"max_consumption"`

	CategoryID sql.NullInt64 `db:"category_id"`
	ZoneID     sql.NullInt64 `db:"zone_id"`
	// OrganizationID is nullable: an unassigned device belongs to no
	// tenant and is excluded from every tenant view.
	OrganizationID sql.NullInt64 `db:"organization_id"`

	// Resolved display labels (join result or legacy scalar column).
	CategoryLabel sql.NullString `db:"category_label"`
	ZoneLabel     sql.NullString `db:"zone_label"`

	Base
}

// CategoryName returns the category display label, or the sentinel when
// no label resolved.
func (d *Device) CategoryName() string {
	if d.CategoryLabel.Valid && d.CategoryLabel.String != "" {
		return d.CategoryLabel.String
	}
	return LabelNoCategory
}

// ZoneName returns the zone display label, or the sentinel.
func (d *Device) ZoneName() string {
	if d.ZoneLabel.Valid && d.ZoneLabel.String != "" {
		return d.ZoneLabel.String
	}
	return LabelNoZone
}

// OwnedBy reports whether the device belongs to the given tenant.
func (d *Device) OwnedBy(organizationID int64) bool {
	return d.OrganizationID.Valid && d.OrganizationID.Int64 == organizationID
}

// ToJSON shapes the device for HTTP responses.
func (d *Device) ToJSON() map[string]any {
	m := map[string]any{
		"device_id":       d.ID,
		"name":            d.Name,
		"max_consumption": d.MaxConsumption,
		"category":        d.CategoryName(),
		"zone":            d.ZoneName(),
		"status":          d.Status,
	}
	if d.OrganizationID.Valid {
		m["organization_id"] = d.OrganizationID.Int64
	} else {
		m["organization_id"] = nil
	}
	return m
}
