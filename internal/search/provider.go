// Package search discovers candidate URLs for an entity through a web
// search index and merges hits across keyword queries.
package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-research/internal/model"
)

// DefaultMaxResults is the number of hits kept per query.
const DefaultMaxResults = 5

// Provider queries a search index.
type Provider interface {
	// Search returns up to the provider's max results for query. Missing
	// credentials yield an empty result, not an error.
	Search(ctx context.Context, query string) ([]model.SearchHit, error)
	Name() string
}

// Collect runs every query through p one at a time and merges the hits into
// one pool deduplicated by URL. The first hit seen for a URL wins; later
// duplicates are discarded. A failing query is logged and skipped.
func Collect(ctx context.Context, p Provider, queries []string) []model.SearchHit {
	seen := make(map[string]struct{})
	var pool []model.SearchHit

	for _, q := range queries {
		if ctx.Err() != nil {
			break
		}
		hits, err := p.Search(ctx, q)
		if err != nil {
			zap.L().Warn("search: query failed",
				zap.String("provider", p.Name()),
				zap.String("query", q),
				zap.Error(err),
			)
			continue
		}
		for _, h := range hits {
			if h.URL == "" {
				continue
			}
			if _, dup := seen[h.URL]; dup {
				continue
			}
			seen[h.URL] = struct{}{}
			pool = append(pool, h)
		}
	}
	return pool
}
