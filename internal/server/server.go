package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/tcmlookup/internal/model"
)

// Lookup paths. LegacyLookupPath is kept for existing clients.
const (
	LegacyLookupPath = "/api/buscar-registro-selenium"
	LookupPath       = "/api/v1/lookup"
)

// HTTP server timeouts. WriteTimeout covers a full lookup: five
// page-script waits of 30 seconds plus browser start-up and teardown.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 60 * time.Second
)

// Looker performs lookups. *lookup.Service implements it.
type Looker interface {
	Lookup(ctx context.Context, key model.SearchKey) (*model.LookupResult, error)
}

// Drainer is a Looker that can stop admitting lookups and wait for the
// running ones. *lookup.Service implements it.
type Drainer interface {
	Close(ctx context.Context) error
}

// Config configures a Server.
type Config struct {
	// Address to listen on, e.g. ":5001".
	Address string

	// AllowedOrigins for CORS. "*" allows any origin. Empty allows none.
	AllowedOrigins []string

	// Lookups performs the lookups.
	Lookups Looker

	// Gatherer is served on /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Logger receives request logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	lookups    Looker
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a Server. It does not start listening.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		lookups: cfg.Lookups,
		logger:  cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(cfg.AllowedOrigins))

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	r.Post(LegacyLookupPath, s.handleLookup)
	r.Post(LookupPath, s.handleLookup)

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, waiting up to shutdownTimeout for in-flight requests. If the
// Looker is a Drainer, Serve then waits up to shutdownTimeout more for
// running lookups to finish, so callers may release what the lookups use
// once Serve returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return errors.Join(err, s.drain(ctx, shutdownTimeout))
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("requests still running after shutdown timeout", "error", err)
		return errors.Join(err, s.drain(ctx, shutdownTimeout))
	}
	if err := s.drain(ctx, shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// drain waits for the Looker's running lookups when it is a Drainer.
func (s *Server) drain(ctx context.Context, timeout time.Duration) error {
	d, ok := s.lookups.(Drainer)
	if !ok {
		return nil
	}
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return d.Close(drainCtx)
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("listening", "address", ln.Addr().String())
	return s.Serve(ctx, ln, shutdownTimeout)
}
