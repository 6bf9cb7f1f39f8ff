package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marquee/internal/browse"
	"marquee/internal/logging"
	"marquee/internal/render"
	"marquee/internal/services"
	"marquee/internal/viewstate"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	DefaultQuery string
	Placeholder  string
	Columns      int
	Debounce     time.Duration
	Logger       *slog.Logger
	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	Now      func() time.Time
}

// Server renders resolver output for browsers and API clients.
type Server struct {
	resolver     browse.Resolver
	defaultQuery string
	placeholder  string
	columns      int
	debounce     time.Duration
	logger       *slog.Logger
	gatherer     prometheus.Gatherer
	now          func() time.Time
}

// New constructs a Server.
func New(resolver browse.Resolver, opts Options) *Server {
	defaultQuery := browse.NormalizeQuery(opts.DefaultQuery)
	if defaultQuery == "" {
		defaultQuery = browse.DefaultQuery
	}
	columns := opts.Columns
	if columns < 1 {
		columns = render.DefaultColumns
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = browse.DefaultDebounce
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		resolver:     resolver,
		defaultQuery: defaultQuery,
		placeholder:  opts.Placeholder,
		columns:      columns,
		debounce:     debounce,
		logger:       logging.NewComponentLogger(opts.Logger, "server"),
		gatherer:     opts.Gatherer,
		now:          now,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/movies", s.handleMovies)
		r.Get("/years", s.handleYears)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Run serves on bind until ctx is canceled.
func (s *Server) Run(ctx context.Context, bind string) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "server", "listen", bind, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
		WriteTimeout:      30 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", logging.String("addr", listener.Addr().String()))
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func parseViewRequest(r *http.Request) (browse.ViewRequest, error) {
	values := r.URL.Query()
	req := browse.ViewRequest{Query: values.Get("q")}

	mode, err := viewstate.ParseSortMode(values.Get("sort"))
	if err != nil {
		return req, err
	}
	req.Sort = mode

	if raw := strings.TrimSpace(values.Get("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			return req, services.Wrap(services.ErrValidation, "server", "parse year", "year must be a positive integer", err)
		}
		req.Year = &y
	}
	return req, nil
}

func (s *Server) view(ctx context.Context, req browse.ViewRequest) browse.Frame {
	return browse.BuildFrame(ctx, s.resolver, s.defaultQuery, req, s.now)
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	req, err := parseViewRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, render.NewFrameJSON(s.view(r.Context(), req)))
}

type yearsResponse struct {
	Query   string `json:"query"`
	Years   []int  `json:"years"`
	MaxYear int    `json:"max_year,omitempty"`
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	frame := s.view(r.Context(), browse.ViewRequest{Query: r.URL.Query().Get("q")})
	s.writeJSON(w, http.StatusOK, yearsResponse{
		Query:   frame.Query,
		Years:   frame.YearOptions,
		MaxYear: frame.MaxYear,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type yearOption struct {
	Value    int
	Selected bool
}

type sortOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Frame          browse.Frame
	Columns        int
	Placeholder    string
	DebounceMillis int64
	AllYears       bool
	Years          []yearOption
	Sorts          []sortOption
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req, err := parseViewRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	frame := s.view(r.Context(), req)

	data := pageData{
		Frame:          frame,
		Columns:        s.columns,
		Placeholder:    s.placeholder,
		DebounceMillis: s.debounce.Milliseconds(),
		AllYears:       frame.YearFilter == nil,
	}
	for _, y := range frame.YearOptions {
		data.Years = append(data.Years, yearOption{Value: y, Selected: frame.YearFilter != nil && *frame.YearFilter == y})
	}
	for _, mode := range viewstate.SortModes() {
		data.Sorts = append(data.Sorts, sortOption{Value: mode.String(), Label: mode.Label(), Selected: mode == frame.Sort})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render index failed", logging.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Debug("write response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  services.Classify(err),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := services.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("duration", time.Since(start)))
	})
}
