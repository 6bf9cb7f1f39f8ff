// Package render draws browse frames for terminals and scripts.
package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"marquee/internal/browse"
	"marquee/internal/movies"
)

// DefaultColumns is the number of cards per grid row.
const DefaultColumns = 4

const (
	cardWidth = 32
	// yearListLimit is the menu length above which year options print as a range.
	yearListLimit = 12
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiBlue  = "\x1b[34m"
)

// EmptyMessage is shown when a settled grid has no cards.
const EmptyMessage = "No movies found"

// LoadingMessage is shown while a search is in flight.
const LoadingMessage = "Loading…"

// Terminal writes frames as card grids.
type Terminal struct {
	mu       sync.Mutex
	w        io.Writer
	columns  int
	colorize bool
}

// NewTerminal renders to w with the given number of cards per row. Color is
// enabled only when w is a terminal.
func NewTerminal(w io.Writer, columns int) *Terminal {
	if columns < 1 {
		columns = DefaultColumns
	}
	return &Terminal{w: w, columns: columns, colorize: ShouldColorize(w)}
}

// Render writes f to the terminal.
func (t *Terminal) Render(f browse.Frame) error {
	out := FormatFrame(f, t.columns, t.colorize)
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.w, out)
	return err
}

// FormatFrame renders a frame to text.
func FormatFrame(f browse.Frame, columns int, colorize bool) string {
	var b strings.Builder
	for _, line := range sectionHeader(f.Title, colorize) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Year: %s  Sort: %s", yearSummary(f), f.Sort.Label())
	if f.MaxYear > 0 {
		fmt.Fprintf(&b, "  Latest: %d", f.MaxYear)
	}
	b.WriteByte('\n')

	if f.Loading {
		b.WriteString(paint(LoadingMessage, ansiDim, colorize))
		b.WriteByte('\n')
	}
	switch {
	case f.Empty():
		b.WriteString(EmptyMessage)
		b.WriteByte('\n')
	case len(f.Records) > 0:
		b.WriteString(Grid(f.Records, columns, colorize))
		b.WriteByte('\n')
	}
	if f.Prompt {
		b.WriteString("Search movies: ")
		if f.Query != "" {
			b.WriteString(f.Query)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Grid lays records out as cards, columns per row.
func Grid(records []movies.Record, columns int, colorize bool) string {
	if len(records) == 0 {
		return ""
	}
	if columns < 1 {
		columns = DefaultColumns
	}
	if columns > len(records) {
		columns = len(records)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true

	for start := 0; start < len(records); start += columns {
		row := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if start+i < len(records) {
				row[i] = card(records[start+i], colorize)
			} else {
				row[i] = ""
			}
		}
		tw.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:           i + 1,
			Align:            text.AlignLeft,
			WidthMax:         cardWidth,
			WidthMaxEnforcer: text.WrapHard,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func card(rec movies.Record, colorize bool) string {
	year := "unknown year"
	if rec.Year > 0 {
		year = strconv.Itoa(rec.Year)
	}
	lines := []string{paint(rec.Title, ansiBold, colorize), year}
	if rec.Genre != "" {
		lines = append(lines, rec.Genre)
	}
	lines = append(lines, paint(rec.PosterURL, ansiDim, colorize))
	return strings.Join(lines, "\n")
}

func yearSummary(f browse.Frame) string {
	if f.YearFilter != nil {
		return strconv.Itoa(*f.YearFilter)
	}
	opts := f.YearOptions
	switch {
	case len(opts) == 0:
		return "All"
	case len(opts) > yearListLimit:
		return fmt.Sprintf("All (%d-%d)", opts[len(opts)-1], opts[0])
	}
	parts := make([]string, 0, len(opts))
	for _, y := range opts {
		parts = append(parts, strconv.Itoa(y))
	}
	return "All (" + strings.Join(parts, ", ") + ")"
}

func sectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len([]rune(line)))
	return []string{paint(line, ansiBlue, colorize), paint(rule, ansiBlue, colorize)}
}

func paint(s, color string, colorize bool) string {
	if !colorize || s == "" {
		return s
	}
	return color + s + ansiReset
}

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
