package testsupport

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// Movie is a fixture served by OMDbServer.
type Movie struct {
	ID     string
	Title  string
	Year   string
	Genre  string
	Poster string
}

// OMDbServer imitates the OMDb search and fetch-by-id endpoints.
type OMDbServer struct {
	*httptest.Server

	mu       sync.Mutex
	movies   []Movie
	tooMany  map[string]bool
	failIDs  map[string]bool
	searches []string
}

// NewOMDbServer starts a fake OMDb API serving movies and registers cleanup.
func NewOMDbServer(t testing.TB, movies ...Movie) *OMDbServer {
	t.Helper()
	s := &OMDbServer{
		movies:  movies,
		tooMany: make(map[string]bool),
		failIDs: make(map[string]bool),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the server URL with a trailing slash.
func (s *OMDbServer) BaseURL() string { return s.Server.URL + "/" }

// TooMany makes searches for the given terms answer "Too many results.".
func (s *OMDbServer) TooMany(terms ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, term := range terms {
		s.tooMany[strings.ToLower(term)] = true
	}
}

// FailFetch makes fetches for the given ids fail with HTTP 500.
func (s *OMDbServer) FailFetch(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.failIDs[id] = true
	}
}

// Searches returns the search terms received so far.
func (s *OMDbServer) Searches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.searches)
}

func (s *OMDbServer) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("apikey") == "" {
		writeOMDb(w, http.StatusUnauthorized, map[string]string{"Response": "False", "Error": "No API key provided."})
		return
	}
	if term := q.Get("s"); term != "" {
		s.search(w, strings.ToLower(term))
		return
	}
	if id := q.Get("i"); id != "" {
		s.fetch(w, id)
		return
	}
	writeOMDb(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Incorrect IMDb ID."})
}

func (s *OMDbServer) search(w http.ResponseWriter, term string) {
	s.mu.Lock()
	s.searches = append(s.searches, term)
	tooMany := s.tooMany[term]
	var hits []map[string]string
	for _, m := range s.movies {
		if strings.Contains(strings.ToLower(m.Title), term) || m.Year == term {
			hits = append(hits, map[string]string{
				"Title":  m.Title,
				"Year":   m.Year,
				"imdbID": m.ID,
				"Type":   "movie",
				"Poster": m.Poster,
			})
		}
	}
	s.mu.Unlock()

	switch {
	case tooMany:
		writeOMDb(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Too many results."})
	case len(hits) == 0:
		writeOMDb(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Movie not found!"})
	default:
		if len(hits) > 10 {
			hits = hits[:10]
		}
		writeOMDb(w, http.StatusOK, map[string]any{"Search": hits, "Response": "True"})
	}
}

func (s *OMDbServer) fetch(w http.ResponseWriter, id string) {
	s.mu.Lock()
	fail := s.failIDs[id]
	var found *Movie
	for i := range s.movies {
		if s.movies[i].ID == id {
			found = &s.movies[i]
			break
		}
	}
	s.mu.Unlock()

	switch {
	case fail:
		w.WriteHeader(http.StatusInternalServerError)
	case found == nil:
		writeOMDb(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Incorrect IMDb ID."})
	default:
		writeOMDb(w, http.StatusOK, map[string]string{
			"Response": "True",
			"imdbID":   found.ID,
			"Title":    found.Title,
			"Year":     found.Year,
			"Genre":    found.Genre,
			"Poster":   found.Poster,
		})
	}
}

func writeOMDb(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
