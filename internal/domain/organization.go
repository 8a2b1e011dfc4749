package domain

import "database/sql"

// Organization is the tenant root. Every tenant-scoped query filters on
// the Device -> Organization chain that hangs off this id.
type Organization struct {
	ID    int64  `db:"organization_id"`
	Name  string `db:"name"`
	Email string `db:"email"`
	// PasswordHash is never serialized; outward payloads use ToJSON.
	PasswordHash string `db:"password"`

	Base
}

// ToJSON shapes the organization for HTTP responses (hash excluded).
func (o *Organization) ToJSON() map[string]any {
	return map[string]any{
		"organization_id": o.ID,
		"name":            o.Name,
		"email":           o.Email,
		"status":          o.Status,
	}
}

// Principal is an authenticated user carried alongside the session. The
// tenant resolver consults it when the session itself has no usable
// organization id: first the profile-level reference, then the direct one.
type Principal struct {
	UserID                string
	OrganizationID        sql.NullInt64
	ProfileOrganizationID sql.NullInt64
}
