package domain

import (
	"database/sql"
	"time"
)

// Record status values shared by every table.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Base carries the audit columns present on every table.
// Deletion is logical: deleted_at is set, rows are never removed here.
type Base struct {
	Status    string       `db:"status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	DeletedAt sql.NullTime `db:"deleted_at"`
}

// Deleted reports whether the row has been soft-deleted.
func (b *Base) Deleted() bool {
	return b.DeletedAt.Valid
}
