package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned by Get-style lookups when no row matches. Services
// translate it into their not-found error class.
var ErrNotFound = errors.New("record not found")

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (class 23505). The import pipeline uses it to keep the driver's
// message in per-row error accounting without aborting the batch.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
