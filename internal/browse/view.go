package browse

import (
	"context"
	"time"

	"marquee/internal/viewstate"
)

// ViewRequest selects one stateless view: a query plus year and sort choices.
type ViewRequest struct {
	Query string
	Year  *int
	Sort  viewstate.SortMode
}

// BuildFrame resolves req on a fresh view state and returns the settled frame.
// An empty query resolves defaultQuery.
func BuildFrame(ctx context.Context, resolver Resolver, defaultQuery string, req ViewRequest, now func() time.Time) Frame {
	query := NormalizeQuery(req.Query)
	term := query
	if term == "" {
		term = NormalizeQuery(defaultQuery)
	}
	if term == "" {
		term = DefaultQuery
	}

	state := viewstate.New(now)
	state.LoadResults(resolver.Resolve(ctx, term))
	state.SetSort(req.Sort)
	state.SetYearFilter(req.Year)

	return Frame{
		Query:       query,
		Title:       SectionTitle(query),
		Records:     state.Derived(),
		YearOptions: state.YearOptions(),
		YearFilter:  state.YearFilter(),
		Sort:        state.Sort(),
		MaxYear:     state.MaxYear(),
	}
}
