// Package catalog loads the internship catalog the ranker works on, either
// from Postgres or from an Elasticsearch index.
package catalog

import (
	"context"

	"internship-workers/internal/matching"
)

const defaultLimit = 500

// Query narrows a catalog load. Sources may use Filters as a prefilter but
// must never drop an internship the matching filters would keep.
type Query struct {
	Filters *matching.MatchFilters
	Limit   int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return defaultLimit
	}
	return q.Limit
}

// Source returns internships in a stable order.
type Source interface {
	ListInternships(ctx context.Context, q Query) ([]matching.Internship, error)
	Name() string
}
