// Package sqlxrepos implements the core repositories on PostgreSQL
// via jmoiron/sqlx.
package sqlxrepos

import (
	"strings"

	"github.com/lib/pq"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// orderingClause renders an ORDER BY clause, falling back to deflt
// (already rendered, e.g. "created_at DESC") when no ordering is given.
func orderingClause(ordering []core.DBOrdering, deflt string) string {
	if len(ordering) == 0 {
		if deflt == "" {
			return ""
		}
		return " ORDER BY " + deflt
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
