package omdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/movies"
	"marquee/internal/services"
)

const (
	kindSearch = "search"
	kindFetch  = "fetch"

	tooManyResultsMarker = "Too many results"
	maxBodyBytes         = 1 << 20
)

// Match is a lightweight search hit lacking genre and full detail.
type Match struct {
	IMDbID string `json:"imdbID"`
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Poster string `json:"Poster"`
	Type   string `json:"Type"`
}

type searchResponse struct {
	Response     string  `json:"Response"`
	Search       []Match `json:"Search"`
	TotalResults string  `json:"totalResults"`
	Error        string  `json:"Error"`
}

// Details is the enriched payload returned by fetch-by-id.
type Details struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	IMDbID   string `json:"imdbID"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Genre    string `json:"Genre"`
	Poster   string `json:"Poster"`
	Plot     string `json:"Plot"`
}

// Source converts the payload into record construction input.
func (d Details) Source() movies.Source {
	return movies.Source{
		ID:     d.IMDbID,
		Title:  d.Title,
		Year:   d.Year,
		Genre:  d.Genre,
		Poster: d.Poster,
	}
}

// BreakerSettings configures the optional circuit breaker.
type BreakerSettings struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Client provides access to the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit paces outbound requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker trips after FailureThreshold consecutive transport failures and
// rejects calls until OpenTimeout elapses.
func WithBreaker(settings BreakerSettings) Option {
	return func(c *Client) {
		threshold := settings.FailureThreshold
		if threshold == 0 {
			threshold = 5
		}
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "omdb",
			// Half-open admits one search plus its full enrichment batch.
			MaxRequests: movies.MaxResults + 1,
			Timeout:     settings.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Info("circuit breaker state changed",
					logging.String("breaker", name),
					logging.String("from", from.String()),
					logging.String("to", to.String()))
			},
		})
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "omdb")
		}
	}
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "omdb", "new client", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "omdb", "new client", "base url required", nil)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "omdb", "new client", "invalid base url", err)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewComponentLogger(nil, "omdb"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search returns up to one page of lightweight matches for term.
func (c *Client) Search(ctx context.Context, term string, page int) ([]Match, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, services.Wrap(services.ErrValidation, "omdb", kindSearch, "term must not be empty", nil)
	}
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("s", term)
	params.Set("page", strconv.Itoa(page))

	start := time.Now()
	matches, err := c.search(ctx, params)
	observe(kindSearch, start, err)
	return matches, err
}

func (c *Client) search(ctx context.Context, params url.Values) ([]Match, error) {
	body, err := c.get(ctx, kindSearch, params)
	if err != nil {
		return nil, err
	}
	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrTransport, "omdb", kindSearch, "decode response", err)
	}
	if !strings.EqualFold(payload.Response, "True") {
		if strings.Contains(payload.Error, tooManyResultsMarker) {
			return nil, services.Wrap(services.ErrTooManyResults, "omdb", kindSearch, payload.Error, nil)
		}
		return nil, services.Wrap(services.ErrNoMatch, "omdb", kindSearch, payload.Error, nil)
	}
	return payload.Search, nil
}

// FetchByID returns the enriched payload for one identifier.
func (c *Client) FetchByID(ctx context.Context, id string) (Details, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Details{}, services.Wrap(services.ErrValidation, "omdb", kindFetch, "id must not be empty", nil)
	}
	params := url.Values{}
	params.Set("i", id)

	start := time.Now()
	details, err := c.fetch(ctx, params)
	observe(kindFetch, start, err)
	return details, err
}

func (c *Client) fetch(ctx context.Context, params url.Values) (Details, error) {
	body, err := c.get(ctx, kindFetch, params)
	if err != nil {
		return Details{}, err
	}
	var payload Details
	if err := json.Unmarshal(body, &payload); err != nil {
		return Details{}, services.Wrap(services.ErrTransport, "omdb", kindFetch, "decode response", err)
	}
	if !strings.EqualFold(payload.Response, "True") {
		return Details{}, services.Wrap(services.ErrNotFound, "omdb", kindFetch, payload.Error, nil)
	}
	return payload, nil
}

func (c *Client) get(ctx context.Context, kind string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, services.Wrap(services.ErrTransport, "omdb", kind, "rate limiter", err)
		}
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "omdb", kind, "parse url", err)
	}
	query := endpoint.Query()
	for key, values := range params {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	query.Set("apikey", c.apiKey)
	endpoint.RawQuery = query.Encode()

	do := func() ([]byte, error) {
		return c.do(ctx, kind, endpoint.String())
	}
	if c.breaker == nil {
		return do()
	}
	body, err := c.breaker.Execute(do)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, services.Wrap(services.ErrTransport, "omdb", kind, "circuit open", err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, kind, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "omdb", kind, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "omdb", kind, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransport, "omdb", kind, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "omdb", kind, "read response", err)
	}
	c.logger.Debug("omdb request complete",
		logging.String("kind", kind),
		logging.Duration("latency", latency),
		logging.Int("bytes", len(body)))
	return body, nil
}

func observe(kind string, start time.Time, err error) {
	metrics.OMDbRequestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.OMDbRequestsTotal.WithLabelValues(kind, services.Classify(err)).Inc()
}
