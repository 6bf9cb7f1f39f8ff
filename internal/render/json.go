package render

import (
	"io"
	"sync"

	"github.com/goccy/go-json"

	"marquee/internal/browse"
	"marquee/internal/movies"
)

// FrameJSON is the scripting view of a frame.
type FrameJSON struct {
	Query       string          `json:"query"`
	Title       string          `json:"title"`
	Loading     bool            `json:"loading"`
	YearFilter  *int            `json:"year_filter"`
	YearOptions []int           `json:"year_options"`
	Sort        string          `json:"sort"`
	MaxYear     int             `json:"max_year,omitempty"`
	Records     []movies.Record `json:"records"`
}

// NewFrameJSON converts a frame.
func NewFrameJSON(f browse.Frame) FrameJSON {
	records := f.Records
	if records == nil {
		records = []movies.Record{}
	}
	return FrameJSON{
		Query:       f.Query,
		Title:       f.Title,
		Loading:     f.Loading,
		YearFilter:  f.YearFilter,
		YearOptions: f.YearOptions,
		Sort:        f.Sort.String(),
		MaxYear:     f.MaxYear,
		Records:     records,
	}
}

// JSON writes one JSON document per settled frame. Loading frames are skipped.
type JSON struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSON returns a renderer writing indented frames to w.
func NewJSON(w io.Writer) *JSON {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSON{enc: enc}
}

// Render encodes f unless it is still loading.
func (j *JSON) Render(f browse.Frame) error {
	if f.Loading {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(NewFrameJSON(f))
}
