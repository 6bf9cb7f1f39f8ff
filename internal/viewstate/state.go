package viewstate

import (
	"cmp"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"marquee/internal/movies"
)

// OldestYear is the last entry of the fallback year menu.
const OldestYear = 1900

// State is the filter/sort engine for one grid.
type State struct {
	now         func() time.Time
	collator    *collate.Collator
	all         []movies.Record
	yearFilter  *int
	sort        SortMode
	derived     []movies.Record
	yearOptions []int
}

// New returns an empty State. now feeds the fallback year menu.
func New(now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	s := &State{
		now:      now,
		collator: collate.New(language.English, collate.IgnoreCase),
	}
	s.recompute()
	s.yearOptions = s.computeYearOptions()
	return s
}

// LoadResults replaces the full set, clears the year filter and keeps the sort.
func (s *State) LoadResults(set movies.ResultSet) {
	s.all = set.Records()
	s.yearFilter = nil
	s.yearOptions = s.computeYearOptions()
	s.recompute()
}

// SetYearFilter restricts the view to one year; nil clears the filter.
func (s *State) SetYearFilter(year *int) {
	if year == nil {
		s.yearFilter = nil
	} else {
		y := *year
		s.yearFilter = &y
	}
	s.recompute()
}

// SetSort changes the ordering of the view.
func (s *State) SetSort(mode SortMode) {
	s.sort = mode
	s.recompute()
}

// Derived returns the visible records.
func (s *State) Derived() []movies.Record { return slices.Clone(s.derived) }

// All returns the unfiltered records of the latest load.
func (s *State) All() []movies.Record { return slices.Clone(s.all) }

// YearFilter returns the active year filter, or nil.
func (s *State) YearFilter() *int {
	if s.yearFilter == nil {
		return nil
	}
	y := *s.yearFilter
	return &y
}

// Sort returns the active sort mode.
func (s *State) Sort() SortMode { return s.sort }

// YearOptions returns the year menu, newest first.
func (s *State) YearOptions() []int { return slices.Clone(s.yearOptions) }

// MaxYear returns the newest year in the full set, or 0 when none is known.
func (s *State) MaxYear() int {
	newest := 0
	for _, rec := range s.all {
		newest = max(newest, rec.Year)
	}
	return newest
}

func (s *State) recompute() {
	derived := make([]movies.Record, 0, len(s.all))
	for _, rec := range s.all {
		if s.yearFilter != nil && rec.Year != *s.yearFilter {
			continue
		}
		derived = append(derived, rec)
	}

	switch s.sort {
	case SortTitleAsc:
		slices.SortStableFunc(derived, func(a, b movies.Record) int {
			return s.collator.CompareString(a.Title, b.Title)
		})
	case SortTitleDesc:
		slices.SortStableFunc(derived, func(a, b movies.Record) int {
			return s.collator.CompareString(b.Title, a.Title)
		})
	case SortYearDesc:
		slices.SortStableFunc(derived, func(a, b movies.Record) int {
			return cmp.Compare(b.Year, a.Year)
		})
	case SortYearAsc:
		slices.SortStableFunc(derived, func(a, b movies.Record) int {
			return cmp.Compare(a.Year, b.Year)
		})
	}
	s.derived = derived
}

func (s *State) computeYearOptions() []int {
	seen := make(map[int]struct{}, len(s.all))
	years := make([]int, 0, len(s.all))
	for _, rec := range s.all {
		if rec.Year <= 0 {
			continue
		}
		if _, ok := seen[rec.Year]; ok {
			continue
		}
		seen[rec.Year] = struct{}{}
		years = append(years, rec.Year)
	}
	if len(years) > 0 {
		slices.SortFunc(years, func(a, b int) int { return cmp.Compare(b, a) })
		return years
	}

	current := s.now().Year()
	years = make([]int, 0, current-OldestYear+1)
	for y := current; y >= OldestYear; y-- {
		years = append(years, y)
	}
	return years
}
