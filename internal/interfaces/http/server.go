// Package http exposes the evaluation service over a JSON API: health,
// metrics, the ranked cohort, trade simulation and raw CBA evaluation.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/courtlab/capmatch/internal/metrics"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig binds local-only on 8080.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         8080,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the router and the underlying http.Server.
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *Handlers
	metrics  *metrics.Metrics
	log      zerolog.Logger
	config   ServerConfig
}

// NewServer wires routes, middleware and instruments.
func NewServer(config ServerConfig, handlers *Handlers, m *metrics.Metrics, log zerolog.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		handlers: handlers,
		metrics:  m,
		log:      log,
		config:   config,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handlers.Health).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(jsonContentTypeMiddleware)
	api.HandleFunc("/players", s.handlers.Players).Methods(http.MethodGet)
	api.HandleFunc("/players/compare", s.handlers.ComparePlayers).Methods(http.MethodPost)
	api.HandleFunc("/trade/simulate", s.handlers.SimulateTrade).Methods(http.MethodPost)
	api.HandleFunc("/cba/evaluate", s.handlers.EvaluateCBA).Methods(http.MethodPost)

	s.router.NotFoundHandler = http.HandlerFunc(s.handlers.NotFound)
}

// Router exposes the handler tree for httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		s.metrics.HTTPRequests.WithLabelValues(route, fmt.Sprintf("%d", wrapper.status)).Inc()
		s.metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		requestID, _ := r.Context().Value(requestIDKey).(string)
		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", route).
			Int("status", wrapper.status).
			Dur("duration", elapsed).
			Msg("http request")
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
