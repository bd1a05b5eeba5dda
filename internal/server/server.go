package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytgrab/internal/shared"
	"github.com/desertthunder/ytgrab/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// See [Logging], [CORS] and [Recover].
type Middleware func(http.Handler) http.Handler

// Handler is an HTTP handler that knows the method and paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Method() string   // Method returns the only HTTP method the handler accepts
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Opts configures a [Server].
type Opts struct {
	Addr            string
	Pipeline        *tasks.Pipeline
	LinkConcurrency int // links processed at once per download job, default 4
	ShutdownTimeout time.Duration
	Logger          *log.Logger
}

// Server serves the playlist and download endpoints.
type Server struct {
	httpServer *http.Server
	router     *BasicRouter
	downloads  *DownloadHandler
	cancelJobs context.CancelFunc
	timeout    time.Duration
	logger     *log.Logger
}

// New builds a [Server] and registers its routes.
//
// Download jobs run on a context owned by the server, so they outlive the request
// that started them and stop when the server shuts down.
func New(opts Opts) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	logger := shared.WithLogger(opts.Logger, "component", "server")

	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger), CORS())

	downloads := NewDownloadHandler(jobCtx, opts.Pipeline, opts.LinkConcurrency, logger)

	router.Handler(NewPlaylistHandler(opts.Pipeline, logger))
	router.Handler(downloads)
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(Health))

	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		router:     router,
		downloads:  downloads,
		cancelJobs: cancel,
		timeout:    opts.ShutdownTimeout,
		logger:     logger,
	}
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
//
// In-flight download jobs are cancelled on shutdown and awaited before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
		errc <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.cancelJobs()
		s.downloads.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.cancelJobs()
	s.downloads.Wait()
	return err
}
