package browse

import (
	"fmt"

	"marquee/internal/movies"
	"marquee/internal/viewstate"
)

// Frame is one rendering of the session.
type Frame struct {
	// Query is the current content of the search box.
	Query string
	// Title heads the grid.
	Title       string
	Records     []movies.Record
	Loading     bool
	YearOptions []int
	YearFilter  *int
	Sort        viewstate.SortMode
	MaxYear     int
	// Prompt asks the surface to focus the search box.
	Prompt bool
}

// Empty reports whether the grid should show the no-results message.
func (f Frame) Empty() bool {
	return !f.Loading && len(f.Records) == 0
}

// Renderer draws frames.
type Renderer interface {
	Render(Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame) error

// Render calls fn(f).
func (fn RendererFunc) Render(f Frame) error { return fn(f) }

// SectionTitle returns the grid heading for a query.
func SectionTitle(query string) string {
	if query == "" {
		return "Search results"
	}
	return fmt.Sprintf("Search results for '%s'", query)
}
