package browse

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"marquee/internal/debounce"
	"marquee/internal/logging"
	"marquee/internal/movies"
	"marquee/internal/viewstate"
)

// DefaultQuery is resolved at startup and whenever the search box is cleared.
const DefaultQuery = "guardians of the galaxy"

// DefaultDebounce is the quiet period before typed input is submitted.
const DefaultDebounce = 300 * time.Millisecond

// Resolver resolves queries into result sets.
type Resolver interface {
	Resolve(ctx context.Context, query string) movies.ResultSet
}

// Options configures a Session.
type Options struct {
	DefaultQuery string
	Debounce     time.Duration
	// KeepStale applies every completed search in arrival order instead of
	// discarding responses superseded by a newer submission.
	KeepStale bool
	Logger    *slog.Logger
	Now       func() time.Time
}

// Session is a single browsing session.
type Session struct {
	resolver     Resolver
	renderer     Renderer
	debouncer    *debounce.Debouncer
	logger       *slog.Logger
	defaultQuery string
	discardStale bool

	mu        sync.Mutex
	state     *viewstate.State
	query     string
	shown     string
	submitted uint64
	applied   uint64
	inflight  int
	prompt    bool
	closed    bool

	wg sync.WaitGroup
}

// NewSession builds a Session. Call Start to load the default query.
func NewSession(resolver Resolver, renderer Renderer, opts Options) *Session {
	defaultQuery := NormalizeQuery(opts.DefaultQuery)
	if defaultQuery == "" {
		defaultQuery = DefaultQuery
	}
	delay := opts.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Session{
		resolver:     resolver,
		renderer:     renderer,
		debouncer:    debounce.New(delay),
		logger:       logging.NewComponentLogger(opts.Logger, "browse"),
		defaultQuery: defaultQuery,
		discardStale: !opts.KeepStale,
		state:        viewstate.New(opts.Now),
	}
}

// NormalizeQuery trims and lowercases raw search box content.
func NormalizeQuery(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

// Start renders the initial frame and loads the default query.
func (s *Session) Start(ctx context.Context) {
	s.submit(ctx, "")
}

// Input handles the current content of the search box.
func (s *Session) Input(ctx context.Context, raw string) {
	query := NormalizeQuery(raw)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query = query
	s.prompt = false
	s.cancelPendingLocked()
	if query == "" {
		s.mu.Unlock()
		s.submit(ctx, "")
		return
	}
	// The pending task counts toward Wait until it submits or is dropped.
	s.wg.Add(1)
	s.debouncer.Schedule(func() {
		defer s.wg.Done()
		s.submit(ctx, query)
	})
	s.mu.Unlock()
}

// SetYearFilter narrows the grid to one year; nil shows every year.
func (s *Session) SetYearFilter(year *int) error {
	s.mu.Lock()
	s.state.SetYearFilter(year)
	frame := s.frameLocked()
	s.mu.Unlock()
	return s.renderer.Render(frame)
}

// SetSort reorders the grid.
func (s *Session) SetSort(mode viewstate.SortMode) error {
	s.mu.Lock()
	s.state.SetSort(mode)
	frame := s.frameLocked()
	s.mu.Unlock()
	return s.renderer.Render(frame)
}

// Reset returns to the startup state: empty search box, default ordering and
// the default query.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancelPendingLocked()
	s.query = ""
	s.prompt = false
	s.state.SetSort(viewstate.SortNone)
	s.mu.Unlock()
	s.submit(ctx, "")
}

// Focus re-renders with the search prompt active.
func (s *Session) Focus() error {
	s.mu.Lock()
	s.prompt = true
	frame := s.frameLocked()
	s.mu.Unlock()
	return s.renderer.Render(frame)
}

// Flush submits pending debounced input immediately.
func (s *Session) Flush() bool {
	return s.debouncer.Flush()
}

// Wait blocks until every submitted search has completed, including input
// still waiting out the debounce.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close drops pending input. In-flight searches still complete but no longer render.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.cancelPendingLocked()
	s.mu.Unlock()
}

// Snapshot returns the current frame without rendering it.
func (s *Session) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

// cancelPendingLocked drops debounced input that has not fired yet and
// releases its hold on Wait.
func (s *Session) cancelPendingLocked() {
	if s.debouncer.Cancel() {
		s.wg.Done()
	}
}

// submit resolves query in the background; an empty query means the default.
func (s *Session) submit(ctx context.Context, query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.submitted++
	seq := s.submitted
	s.inflight++
	s.wg.Add(1)
	frame := s.frameLocked()
	s.mu.Unlock()
	s.render(frame)

	term := query
	if term == "" {
		term = s.defaultQuery
	}
	go func() {
		defer s.wg.Done()
		set := s.resolver.Resolve(ctx, term)
		s.complete(seq, query, set)
	}()
}

func (s *Session) complete(seq uint64, query string, set movies.ResultSet) {
	s.mu.Lock()
	s.inflight--
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.discardStale && seq < s.submitted {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded results",
			logging.String(logging.FieldQuery, query),
			logging.Int("records", set.Len()))
		return
	}
	s.applied = seq
	s.shown = query
	s.state.LoadResults(set)
	frame := s.frameLocked()
	s.mu.Unlock()
	s.render(frame)
}

func (s *Session) render(frame Frame) {
	if err := s.renderer.Render(frame); err != nil {
		logging.WarnWithContext(s.logger, "render failed", "render_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "screen may be out of date"))
	}
}

func (s *Session) loadingLocked() bool {
	if s.discardStale {
		return s.applied < s.submitted
	}
	return s.inflight > 0
}

func (s *Session) frameLocked() Frame {
	return Frame{
		Query:       s.query,
		Title:       SectionTitle(s.shown),
		Records:     s.state.Derived(),
		Loading:     s.loadingLocked(),
		YearOptions: s.state.YearOptions(),
		YearFilter:  s.state.YearFilter(),
		Sort:        s.state.Sort(),
		MaxYear:     s.state.MaxYear(),
		Prompt:      s.prompt,
	}
}
