// Package server serves the dashboard page and its JSON API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/matsen/paperdash/internal/loader"
	"github.com/matsen/paperdash/internal/wordcloud"
	"github.com/matsen/paperdash/internal/wordfreq"
)

// Options configures a Server.
type Options struct {
	// DataPath is the metadata file every request reads through the cache.
	DataPath string

	// Defaults for requests without mode or n.
	Mode wordfreq.Mode
	TopN int

	Stopwords wordfreq.Stopwords
	Cloud     wordcloud.Options

	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64
	RateBurst int

	// AllowedOrigins for CORS on /api; empty allows any origin.
	AllowedOrigins []string
}

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 10 * time.Second

const limiterIdle = 10 * time.Minute

// Server is the HTTP front end. It holds no table state of its own; every
// request reads the current table from the shared cache.
type Server struct {
	router   *chi.Mux
	opts     Options
	cache    *loader.Cache
	logger   *slog.Logger
	limiter  *keyedLimiter
	validate *validator.Validate
}

// New creates a server reading opts.DataPath through cache.
func New(opts Options, cache *loader.Cache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Stopwords == nil {
		opts.Stopwords = wordfreq.DefaultStopwords()
	}

	s := &Server{
		router:   chi.NewRouter(),
		opts:     opts,
		cache:    cache,
		logger:   logger,
		validate: newValidator(),
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = newKeyedLimiter(opts.RateLimit, burst, limiterIdle)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimit)
		}

		r.Get("/", s.handleDashboard)
		r.Get("/wordcloud.png", s.handleWordCloudPNG)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.allowedOrigins(),
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
			r.Get("/timeline", s.handleTimeline)
			r.Get("/journals", s.handleJournals)
			r.Get("/journals/longtail", s.handleLongTail)
			r.Get("/journals/similar", s.handleSimilarJournals)
			r.Get("/words", s.handleWords)
		})
	})
}

func (s *Server) allowedOrigins() []string {
	if len(s.opts.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.opts.AllowedOrigins
}

// requestLogger logs one line per request with chi's request ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "data_path", s.opts.DataPath)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
