package browse_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"marquee/internal/browse"
	"marquee/internal/movies"
	"marquee/internal/viewstate"
)

// fakeResolver answers from a table; queries with a gate block until released.
type fakeResolver struct {
	mu      sync.Mutex
	results map[string]movies.ResultSet
	gates   map[string]chan struct{}
	calls   []string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		results: map[string]movies.ResultSet{
			browse.DefaultQuery: movies.NewResultSet([]movies.Record{
				{ID: "g1", Title: "Guardians of the Galaxy", Year: 2014},
				{ID: "g2", Title: "Guardians of the Galaxy Vol. 2", Year: 2017},
				{ID: "g3", Title: "Guardians of the Galaxy Vol. 3", Year: 2023},
			}),
			"batman": movies.NewResultSet([]movies.Record{
				{ID: "b1", Title: "Batman Begins", Year: 2005},
				{ID: "b2", Title: "The Batman", Year: 2022},
			}),
		},
		gates: make(map[string]chan struct{}),
	}
}

func (f *fakeResolver) gate(query string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[query] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) movies.ResultSet {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	gate := f.gates[query]
	set := f.results[query]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return movies.ResultSet{}
		}
	}
	return set
}

func (f *fakeResolver) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recorder struct {
	mu     sync.Mutex
	frames []browse.Frame
}

func (r *recorder) Render(f browse.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) last(t *testing.T) browse.Frame {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		t.Fatal("nothing rendered")
	}
	return r.frames[len(r.frames)-1]
}

func recordIDs(records []movies.Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}

func newSession(t *testing.T, resolver *fakeResolver, opts browse.Options) (*browse.Session, *recorder) {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = time.Hour
	}
	rec := &recorder{}
	s := browse.NewSession(resolver, rec, opts)
	t.Cleanup(s.Close)
	return s, rec
}

func year(y int) *int { return &y }

func TestStartLoadsDefaultQuery(t *testing.T) {
	resolver := newFakeResolver()
	s, rec := newSession(t, resolver, browse.Options{})

	s.Start(context.Background())
	s.Wait()

	frame := rec.last(t)
	if frame.Loading {
		t.Fatal("expected loading to finish")
	}
	if frame.Title != "Search results" {
		t.Fatalf("unexpected title %q", frame.Title)
	}
	if diff := cmp.Diff([]string{"g1", "g2", "g3"}, recordIDs(frame.Records)); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2023, 2017, 2014}, frame.YearOptions); diff != "" {
		t.Fatalf("year options (-want +got):\n%s", diff)
	}
	if frame.MaxYear != 2023 {
		t.Fatalf("expected max year 2023, got %d", frame.MaxYear)
	}
}

func TestInputIsDebouncedAndNormalized(t *testing.T) {
	resolver := newFakeResolver()
	s, rec := newSession(t, resolver, browse.Options{})
	s.Start(context.Background())
	s.Wait()

	for _, raw := range []string{"b", "ba", "bat", "  BatMan  "} {
		s.Input(context.Background(), raw)
	}
	if !s.Flush() {
		t.Fatal("expected pending input")
	}
	s.Wait()

	if diff := cmp.Diff([]string{browse.DefaultQuery, "batman"}, resolver.queries()); diff != "" {
		t.Fatalf("resolver calls (-want +got):\n%s", diff)
	}
	frame := rec.last(t)
	if frame.Query != "batman" || frame.Title != "Search results for 'batman'" {
		t.Fatalf("unexpected query/title %q / %q", frame.Query, frame.Title)
	}
	if diff := cmp.Diff([]string{"b1", "b2"}, recordIDs(frame.Records)); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
}

func TestDebounceFiresAfterQuietPeriod(t *testing.T) {
	resolver := newFakeResolver()
	s, _ := newSession(t, resolver, browse.Options{Debounce: 10 * time.Millisecond})

	s.Input(context.Background(), "batman")
	deadline := time.Now().Add(2 * time.Second)
	for len(resolver.queries()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Wait()
	if diff := cmp.Diff([]string{"batman"}, resolver.queries()); diff != "" {
		t.Fatalf("resolver calls (-want +got):\n%s", diff)
	}
}

func TestWaitCoversInputFiringDuringFlush(t *testing.T) {
	for i := range 200 {
		resolver := newFakeResolver()
		s, rec := newSession(t, resolver, browse.Options{Debounce: 200 * time.Microsecond})

		s.Input(context.Background(), "batman")
		if i%2 == 1 {
			time.Sleep(200 * time.Microsecond)
		}
		s.Flush()
		s.Wait()

		frame := rec.last(t)
		if frame.Loading || frame.Title != "Search results for 'batman'" {
			t.Fatalf("iteration %d: Wait returned before the typed query landed: loading=%v title=%q",
				i, frame.Loading, frame.Title)
		}
	}
}

func TestCloseReleasesPendingInput(t *testing.T) {
	resolver := newFakeResolver()
	s, _ := newSession(t, resolver, browse.Options{})

	s.Input(context.Background(), "batman")
	s.Close()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait blocked on input dropped by Close")
	}
	if len(resolver.queries()) != 0 {
		t.Fatalf("closed session resolved %v", resolver.queries())
	}
}

func TestEmptyInputReloadsDefaultAndClearsYearFilter(t *testing.T) {
	resolver := newFakeResolver()
	s, rec := newSession(t, resolver, browse.Options{})
	s.Start(context.Background())
	s.Wait()

	s.Input(context.Background(), "batman")
	s.Flush()
	s.Wait()
	if err := s.SetYearFilter(year(2005)); err != nil {
		t.Fatalf("SetYearFilter: %v", err)
	}
	s.Input(context.Background(), "bat")
	s.Input(context.Background(), "   ")
	if s.Flush() {
		t.Fatal("clearing the box should cancel pending input")
	}
	s.Wait()

	frame := rec.last(t)
	if frame.YearFilter != nil {
		t.Fatalf("expected year filter cleared, got %d", *frame.YearFilter)
	}
	if frame.Query != "" || frame.Title != "Search results" {
		t.Fatalf("unexpected query/title %q / %q", frame.Query, frame.Title)
	}
	if diff := cmp.Diff([]string{"g1", "g2", "g3"}, recordIDs(frame.Records)); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
	want := []string{browse.DefaultQuery, "batman", browse.DefaultQuery}
	if diff := cmp.Diff(want, resolver.queries()); diff != "" {
		t.Fatalf("resolver calls (-want +got):\n%s", diff)
	}
}

func TestLoadingFrameKeepsPreviousRecords(t *testing.T) {
	resolver := newFakeResolver()
	s, rec := newSession(t, resolver, browse.Options{})
	s.Start(context.Background())
	s.Wait()

	gate := resolver.gate("batman")
	s.Input(context.Background(), "batman")
	s.Flush()

	loading := rec.last(t)
	if !loading.Loading {
		t.Fatal("expected a loading frame")
	}
	if diff := cmp.Diff([]string{"g1", "g2", "g3"}, recordIDs(loading.Records)); diff != "" {
		t.Fatalf("loading frame records (-want +got):\n%s", diff)
	}
	if loading.Empty() {
		t.Fatal("loading frame must not show the empty message")
	}

	close(gate)
	s.Wait()
	done := rec.last(t)
	if done.Loading || len(done.Records) != 2 {
		t.Fatalf("unexpected final frame: loading=%v records=%d", done.Loading, len(done.Records))
	}
}

func TestSupersededResultsAreDiscarded(t *testing.T) {
	resolver := newFakeResolver()
	resolver.results["superman"] = movies.NewResultSet([]movies.Record{{ID: "s1", Title: "Superman", Year: 1978}})
	s, rec := newSession(t, resolver, browse.Options{})

	gate := resolver.gate("batman")
	s.Input(context.Background(), "batman")
	s.Flush()
	s.Input(context.Background(), "superman")
	s.Flush()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f := rec.last(t); !f.Loading && f.Title == "Search results for 'superman'" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(gate)
	s.Wait()

	frame := rec.last(t)
	if diff := cmp.Diff([]string{"s1"}, recordIDs(frame.Records)); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
	if frame.Title != "Search results for 'superman'" {
		t.Fatalf("unexpected title %q", frame.Title)
	}
}

func TestKeepStaleAppliesInArrivalOrder(t *testing.T) {
	resolver := newFakeResolver()
	resolver.results["superman"] = movies.NewResultSet([]movies.Record{{ID: "s1", Title: "Superman", Year: 1978}})
	s, rec := newSession(t, resolver, browse.Options{KeepStale: true})

	gate := resolver.gate("batman")
	s.Input(context.Background(), "batman")
	s.Flush()
	s.Input(context.Background(), "superman")
	s.Flush()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f := rec.last(t); f.Title == "Search results for 'superman'" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !rec.last(t).Loading {
		t.Fatal("expected loading while the older search is still in flight")
	}
	close(gate)
	s.Wait()

	frame := rec.last(t)
	if diff := cmp.Diff([]string{"b1", "b2"}, recordIDs(frame.Records)); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
	if frame.Loading {
		t.Fatal("expected loading to finish")
	}
}

func TestAbsentYearShowsEmptyGrid(t *testing.T) {
	resolver := newFakeResolver()
	s, rec := newSession(t, resolver, browse.Options{})
	s.Start(context.Background())
	s.Wait()

	if err := s.SetYearFilter(year(1999)); err != nil {
		t.Fatalf("SetYearFilter: %v", err)
	}
	frame := rec.last(t)
	if !frame.Empty() {
		t.Fatalf("expected empty grid, got %v", recordIDs(frame.Records))
	}
}

func TestSetSortRerenders(t *testing.T) {
	resolver := newFakeResolver()
	s, rec := newSession(t, resolver, browse.Options{})
	s.Start(context.Background())
	s.Wait()

	if err := s.SetSort(viewstate.SortYearDesc); err != nil {
		t.Fatalf("SetSort: %v", err)
	}
	if diff := cmp.Diff([]string{"g3", "g2", "g1"}, recordIDs(rec.last(t).Records)); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
}

func TestResetRestoresStartupState(t *testing.T) {
	resolver := newFakeResolver()
	s, rec := newSession(t, resolver, browse.Options{})
	s.Start(context.Background())
	s.Wait()

	s.Input(context.Background(), "batman")
	s.Flush()
	s.Wait()
	_ = s.SetSort(viewstate.SortTitleDesc)
	_ = s.SetYearFilter(year(2022))
	s.Input(context.Background(), "pending")

	s.Reset(context.Background())
	s.Wait()

	frame := rec.last(t)
	if frame.Query != "" || frame.Sort != viewstate.SortNone || frame.YearFilter != nil {
		t.Fatalf("unexpected state after reset: %+v", frame)
	}
	if diff := cmp.Diff([]string{"g1", "g2", "g3"}, recordIDs(frame.Records)); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
	if s.Flush() {
		t.Fatal("reset should drop pending input")
	}
}

func TestFocusSetsPrompt(t *testing.T) {
	resolver := newFakeResolver()
	s, rec := newSession(t, resolver, browse.Options{})
	if err := s.Focus(); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if !rec.last(t).Prompt {
		t.Fatal("expected prompt frame")
	}
	s.Input(context.Background(), "x")
	if s.Snapshot().Prompt {
		t.Fatal("typing should clear the prompt")
	}
}

func TestSectionTitle(t *testing.T) {
	if got := browse.SectionTitle(""); got != "Search results" {
		t.Fatalf("unexpected %q", got)
	}
	if got := browse.SectionTitle("batman"); got != "Search results for 'batman'" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestBuildFrameAppliesSortThenYear(t *testing.T) {
	resolver := newFakeResolver()
	frame := browse.BuildFrame(context.Background(), resolver, "", browse.ViewRequest{
		Query: " BATMAN ",
		Sort:  viewstate.SortYearDesc,
	}, nil)
	if frame.Title != "Search results for 'batman'" || frame.Loading {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if diff := cmp.Diff([]string{"b2", "b1"}, recordIDs(frame.Records)); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}

	frame = browse.BuildFrame(context.Background(), resolver, "", browse.ViewRequest{Year: year(2017)}, nil)
	if frame.Title != "Search results" {
		t.Fatalf("unexpected title %q", frame.Title)
	}
	if diff := cmp.Diff([]string{"g2"}, recordIDs(frame.Records)); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"batman", browse.DefaultQuery}, resolver.queries()); diff != "" {
		t.Fatalf("resolver calls (-want +got):\n%s", diff)
	}
}
