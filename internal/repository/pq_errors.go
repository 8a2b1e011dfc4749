package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes this layer reacts to.
const (
	pqUniqueViolation = "23505"
	pqUndefinedColumn = "42703"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// isUndefinedColumn detects the renamed-schema case: a query against the
// current column names failing because the store still carries the
// legacy shape. Treated as expected variation, not an error.
func isUndefinedColumn(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUndefinedColumn
}
