// Package movies defines the enriched movie record and the capped result set
// produced by one query resolution.
package movies

import (
	"strconv"
	"strings"
)

// MaxResults caps every ResultSet. It bounds the enrichment fan-out and keeps
// the card grid symmetrical.
const MaxResults = 8

// DefaultPlaceholder is the poster shown for titles without artwork.
const DefaultPlaceholder = "https://tse1.mm.bing.net/th/id/OIP.tqmQgcjoBxS1v1ZpujoLgAHaHV?rs=1&pid=ImgDetMain&o=7&rm=3"

// missingValue is the sentinel the metadata source uses for absent fields.
const missingValue = "N/A"

// Record is one enriched movie card.
type Record struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	Genre     string `json:"genre"`
	PosterURL string `json:"poster_url"`
}

// Source carries the raw fields a Record is built from.
type Source struct {
	ID     string
	Title  string
	Year   string
	Genre  string
	Poster string
}

// NewRecord builds a Record, substituting placeholder when the source has no
// poster. A blank placeholder falls back to DefaultPlaceholder.
func NewRecord(src Source, placeholder string) Record {
	poster := strings.TrimSpace(src.Poster)
	if poster == "" || strings.EqualFold(poster, missingValue) {
		poster = strings.TrimSpace(placeholder)
	}
	if poster == "" {
		poster = DefaultPlaceholder
	}
	genre := strings.TrimSpace(src.Genre)
	if genre == missingValue {
		genre = ""
	}
	return Record{
		ID:        strings.TrimSpace(src.ID),
		Title:     strings.TrimSpace(src.Title),
		Year:      ParseYear(src.Year),
		Genre:     genre,
		PosterURL: poster,
	}
}

// ParseYear reads the leading digits of a source year such as "2014",
// "2011–2019" or "2019–". It returns 0 when no digits lead the value.
func ParseYear(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	year, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return year
}

// ResultSet is the ordered, capped list of records from one resolution. It is
// replaced wholesale and never mutated after construction.
type ResultSet struct {
	records []Record
}

// NewResultSet copies at most MaxResults records into a new set.
func NewResultSet(records []Record) ResultSet {
	if len(records) > MaxResults {
		records = records[:MaxResults]
	}
	if len(records) == 0 {
		return ResultSet{}
	}
	cp := make([]Record, len(records))
	copy(cp, records)
	return ResultSet{records: cp}
}

// Len reports the number of records.
func (s ResultSet) Len() int { return len(s.records) }

// Empty reports whether the set holds no records.
func (s ResultSet) Empty() bool { return len(s.records) == 0 }

// Records returns a copy of the records in resolution order.
func (s ResultSet) Records() []Record {
	if len(s.records) == 0 {
		return nil
	}
	cp := make([]Record, len(s.records))
	copy(cp, s.records)
	return cp
}
