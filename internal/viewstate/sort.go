package viewstate

import (
	"fmt"
	"strings"

	"marquee/internal/services"
)

// SortMode selects the ordering of the derived view.
type SortMode int

const (
	// SortNone keeps the resolver's order.
	SortNone SortMode = iota
	SortTitleAsc
	SortTitleDesc
	SortYearDesc
	SortYearAsc
)

var sortNames = [...]string{
	SortNone:      "default",
	SortTitleAsc:  "alphabetical-az",
	SortTitleDesc: "alphabetical-za",
	SortYearDesc:  "newest-to-oldest",
	SortYearAsc:   "oldest-to-newest",
}

var sortLabels = [...]string{
	SortNone:      "Default",
	SortTitleAsc:  "Alphabetical (A-Z)",
	SortTitleDesc: "Alphabetical (Z-A)",
	SortYearDesc:  "Newest to Oldest",
	SortYearAsc:   "Oldest to Newest",
}

// SortModes lists every mode in menu order.
func SortModes() []SortMode {
	return []SortMode{SortNone, SortTitleAsc, SortTitleDesc, SortYearDesc, SortYearAsc}
}

// String returns the wire name of the mode.
func (m SortMode) String() string {
	if m < 0 || int(m) >= len(sortNames) {
		return fmt.Sprintf("SortMode(%d)", int(m))
	}
	return sortNames[m]
}

// Label returns the human-readable menu label.
func (m SortMode) Label() string {
	if m < 0 || int(m) >= len(sortLabels) {
		return m.String()
	}
	return sortLabels[m]
}

// ParseSortMode accepts a wire name. An empty value means SortNone.
func ParseSortMode(value string) (SortMode, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return SortNone, nil
	}
	for i, name := range sortNames {
		if name == value {
			return SortMode(i), nil
		}
	}
	return SortNone, services.Wrap(services.ErrValidation, "viewstate", "parse sort",
		fmt.Sprintf("unknown sort mode %q (want one of %s)", value, strings.Join(sortNames[:], ", ")), nil)
}

// MarshalText encodes the mode as its wire name.
func (m SortMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a wire name; empty text means SortNone.
func (m *SortMode) UnmarshalText(text []byte) error {
	parsed, err := ParseSortMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
