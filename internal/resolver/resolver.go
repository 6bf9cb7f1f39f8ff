package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/movies"
	"marquee/internal/omdb"
	"marquee/internal/services"
)

// MetadataClient is the subset of the OMDb client the resolver depends on.
type MetadataClient interface {
	Search(ctx context.Context, term string, page int) ([]omdb.Match, error)
	FetchByID(ctx context.Context, id string) (omdb.Details, error)
}

// ambiguousQueryLength is the length from which an overflowing query is
// considered too ambiguous to rescue with fallbacks.
const ambiguousQueryLength = 3

const (
	maxPrefixAttempts = 3
	recentYearCount   = 3
)

// commonPrefixes are popular title words tried for single-character queries.
var commonPrefixes = []string{
	"the", "a", "an", "star", "war", "lord", "ring", "harry", "potter",
	"marvel", "dc", "bat", "spider", "iron", "captain", "america", "thor",
}

// Resolver converts queries into ResultSets.
type Resolver struct {
	client      MetadataClient
	placeholder string
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source used by the recent-years fallback.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logging.NewComponentLogger(logger, "resolver")
		}
	}
}

// WithPlaceholder sets the poster URL used when a title has no poster. Blank
// values keep movies.DefaultPlaceholder.
func WithPlaceholder(url string) Option {
	return func(r *Resolver) {
		if url = strings.TrimSpace(url); url != "" {
			r.placeholder = url
		}
	}
}

// New constructs a Resolver backed by client.
func New(client MetadataClient, opts ...Option) *Resolver {
	r := &Resolver{
		client:      client,
		placeholder: movies.DefaultPlaceholder,
		logger:      logging.NewComponentLogger(nil, "resolver"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the search pipeline and, for short overflowing queries, the
// fallback chain. Failures yield an empty ResultSet.
func (r *Resolver) Resolve(ctx context.Context, query string) movies.ResultSet {
	query = strings.TrimSpace(query)
	if query == "" || r == nil || r.client == nil {
		return movies.ResultSet{}
	}

	ctx = services.WithRequestID(ctx, uuid.NewString())
	ctx = services.WithQuery(ctx, query)
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()

	set, err := r.pipeline(ctx, logger, query)
	outcome := "direct"
	switch {
	case err == nil:
	case errors.Is(err, services.ErrTooManyResults):
		if utf8.RuneCountInString(query) >= ambiguousQueryLength {
			logger.Info("query too ambiguous to disambiguate",
				logging.String(logging.FieldErrorKind, services.Classify(err)))
			set = movies.ResultSet{}
			break
		}
		outcome = "fallback"
		set = r.fallback(ctx, logger, query)
	default:
		logging.WarnWithContext(logger, "query resolution failed", "resolve_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Classify(err)),
			logging.String(logging.FieldErrorHint, "verify network access and omdb.api_key"),
			logging.String(logging.FieldImpact, "showing no results"))
		set = movies.ResultSet{}
	}
	if ctx.Err() != nil {
		set = movies.ResultSet{}
	}
	if set.Empty() {
		outcome = "empty"
	}
	metrics.ResolutionsTotal.WithLabelValues(outcome).Inc()
	logger.Info("query resolved",
		logging.String("outcome", outcome),
		logging.Int("records", set.Len()),
		logging.Duration("resolve_duration", time.Since(start)))
	return set
}

// pipeline searches term, caps the matches, and enriches them. NoMatch and an
// empty match list yield an empty set without error; TooManyResults and
// transport failures are returned.
func (r *Resolver) pipeline(ctx context.Context, logger *slog.Logger, term string) (movies.ResultSet, error) {
	matches, err := r.client.Search(ctx, term, 1)
	if err != nil {
		if errors.Is(err, services.ErrNoMatch) {
			return movies.ResultSet{}, nil
		}
		return movies.ResultSet{}, err
	}
	if len(matches) == 0 {
		return movies.ResultSet{}, nil
	}
	if len(matches) > movies.MaxResults {
		matches = matches[:movies.MaxResults]
	}
	return r.enrich(ctx, logger, matches), nil
}

// enrich fetches every match concurrently and keeps the survivors in match order.
func (r *Resolver) enrich(ctx context.Context, logger *slog.Logger, matches []omdb.Match) movies.ResultSet {
	slots := make([]*movies.Record, len(matches))
	var g errgroup.Group
	g.SetLimit(movies.MaxResults)
	for i, match := range matches {
		g.Go(func() error {
			details, err := r.client.FetchByID(ctx, match.IMDbID)
			if err != nil {
				metrics.EnrichmentFailuresTotal.Inc()
				logger.Debug("dropping match after enrichment failure",
					logging.String("imdb_id", match.IMDbID),
					logging.String(logging.FieldErrorKind, services.Classify(err)),
					logging.Error(services.Wrap(services.ErrEnrichment, "resolver", "enrich", match.Title, err)))
				return nil
			}
			record := movies.NewRecord(details.Source(), r.placeholder)
			slots[i] = &record
			return nil
		})
	}
	_ = g.Wait()

	records := make([]movies.Record, 0, len(slots))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return movies.NewResultSet(records)
}

type strategy struct {
	name string
	run  func(context.Context) (movies.ResultSet, error)
}

func (r *Resolver) fallback(ctx context.Context, logger *slog.Logger, query string) movies.ResultSet {
	strategies := []strategy{{
		name: "retry",
		run: func(ctx context.Context) (movies.ResultSet, error) {
			return r.attempt(ctx, logger, query)
		},
	}}
	if utf8.RuneCountInString(query) == 1 {
		strategies = append(strategies, strategy{
			name: "prefix",
			run: func(ctx context.Context) (movies.ResultSet, error) {
				return r.firstNonEmpty(ctx, logger, PrefixesFor(query))
			},
		})
	}
	strategies = append(strategies, strategy{
		name: "recent_years",
		run: func(ctx context.Context) (movies.ResultSet, error) {
			return r.firstNonEmpty(ctx, logger, recentYears(r.now()))
		},
	})

	for _, s := range strategies {
		set, err := s.run(ctx)
		if ctx.Err() != nil {
			return movies.ResultSet{}
		}
		switch {
		case err != nil:
			metrics.FallbackAttemptsTotal.WithLabelValues(s.name, "error").Inc()
			logger.Debug("fallback strategy failed",
				logging.String("strategy", s.name),
				logging.String(logging.FieldErrorKind, services.Classify(err)),
				logging.Error(err))
		case set.Empty():
			metrics.FallbackAttemptsTotal.WithLabelValues(s.name, "empty").Inc()
		default:
			metrics.FallbackAttemptsTotal.WithLabelValues(s.name, "hit").Inc()
			logger.Info("fallback strategy succeeded",
				logging.String("strategy", s.name),
				logging.Int("records", set.Len()))
			return set
		}
	}
	logger.Info("all fallback strategies exhausted")
	return movies.ResultSet{}
}

// attempt runs the pipeline for one fallback term. An overflowing term counts as
// an empty attempt; transport failures end the calling strategy.
func (r *Resolver) attempt(ctx context.Context, logger *slog.Logger, term string) (movies.ResultSet, error) {
	set, err := r.pipeline(ctx, logger, term)
	if errors.Is(err, services.ErrTooManyResults) {
		return movies.ResultSet{}, nil
	}
	return set, err
}

func (r *Resolver) firstNonEmpty(ctx context.Context, logger *slog.Logger, terms []string) (movies.ResultSet, error) {
	for _, term := range terms {
		set, err := r.attempt(ctx, logger, term)
		if err != nil {
			return movies.ResultSet{}, err
		}
		if !set.Empty() {
			return set, nil
		}
	}
	return movies.ResultSet{}, nil
}

// PrefixesFor returns the first common title prefixes starting with the given
// character, compared case-insensitively.
func PrefixesFor(char string) []string {
	char = strings.ToLower(strings.TrimSpace(char))
	if char == "" {
		return nil
	}
	out := make([]string, 0, maxPrefixAttempts)
	for _, prefix := range commonPrefixes {
		if strings.HasPrefix(prefix, char) {
			out = append(out, prefix)
			if len(out) == maxPrefixAttempts {
				break
			}
		}
	}
	return out
}

func recentYears(now time.Time) []string {
	current := now.Year()
	years := make([]string, 0, recentYearCount)
	for i := 0; i < recentYearCount; i++ {
		years = append(years, strconv.Itoa(current-i))
	}
	return years
}
