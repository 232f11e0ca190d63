package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/voxgate/voxgate/internal/store"
	"github.com/voxgate/voxgate/internal/webhook"
)

// listLimit caps GET /conversations/ results.
const listLimit = 50

// Config holds HTTP server configuration.
type Config struct {
	Listen string
	// AllowedOrigins is the CORS allow-list for the browser frontend.
	AllowedOrigins []string
	// StorageBackend is reported by healthz.
	StorageBackend string
}

// Server serves both the webhook intake routes and the read API.
type Server struct {
	config    Config
	store     store.Store
	intake    *webhook.Handler
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new HTTP server instance.
func New(config Config, st store.Store, intake *webhook.Handler, logger *slog.Logger) *Server {
	return &Server{
		config:    config,
		store:     st,
		intake:    intake,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("server starting", "listen", s.config.Listen, "backend", s.config.StorageBackend)

	// Run server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	// Webhook intake. The provider can be pointed at either path.
	r.Post("/", s.intake.ServeHTTP)
	r.Post("/webhooks/elevenlabs", s.intake.ServeHTTP)

	// Read API.
	r.Get("/healthz", s.handleHealthz)
	r.Route("/conversations", func(r chi.Router) {
		r.Get("/latest", s.handleLatest)
		r.Get("/", s.handleList)
		r.Get("/{conversationID}", s.handleGet)
	})

	return r
}

// loggingMiddleware logs HTTP requests (excludes payload bodies).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
