package query

import "github.com/colonyops/almanac/internal/core/entity"

// Query combines the three view transforms. The zero Query returns the input
// in insertion order.
type Query struct {
	Filter Filter
	Text   string
	Sort   SortKey
}

// Run applies the filter, then the text search, then the sort. The order is
// fixed so the same query over the same snapshot always yields the same view.
func Run(entities []entity.Entity, q Query) []entity.Entity {
	out := Apply(entities, q.Filter)
	out = Search(out, q.Text)
	return Sort(out, q.Sort)
}
