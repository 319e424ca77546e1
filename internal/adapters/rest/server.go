package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/horse37/corretores-sub000/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

func NewServer(restPort string, handlers *SyncHandlers, baseLogger port.LoggerPort) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", handlers.HandleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sync", handlers.HandleSyncAll)
		r.Post("/sync/{propertyID}", handlers.HandleSyncProperty)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    ":" + restPort,
			Handler: r,
		},
		logger: baseLogger,
	}
}

// Start blocks until the server stops or fails.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
