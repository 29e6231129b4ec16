// Package api fieldnotes REST API
//
// @title           fieldnotes REST API
// @version         1.0.0
// @description     Store and exchange geocaching field notes as versioned binary envelopes or JSON.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"go.chromium.org/luci/common/logging"
)

// Router builds the HTTP handler for the server
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/notes", s.metrics.InstrumentHandler("GET", "/api/v1/notes", s.handleListNotes))
		r.Get("/notes/{id}", s.metrics.InstrumentHandler("GET", "/api/v1/notes/{id}", s.handleGetNote))
		r.Put("/notes/{id}", s.metrics.InstrumentHandler("PUT", "/api/v1/notes/{id}", s.handlePutNote))
		r.Delete("/notes/{id}", s.metrics.InstrumentHandler("DELETE", "/api/v1/notes/{id}", s.handleDeleteNote))

		r.Get("/caches/{code}/notes", s.metrics.InstrumentHandler("GET", "/api/v1/caches/{code}/notes", s.handleCacheNotes))

		r.Post("/decode", s.metrics.InstrumentHandler("POST", "/api/v1/decode", s.handleDecode))
	})

	// API documentation (unprotected)
	r.Get("/swagger/doc.json", s.handleSwagger)

	return r
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		logging.Errorf(r.Context(), "read swagger doc: %s", err)
		sendError(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	_, _ = w.Write([]byte(doc))
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully. The context's logger is used for request handling.
func StartServer(ctx context.Context, repo Repository, config ServerConfig) error {
	SwaggerInfo.Host = fmt.Sprintf("localhost:%d", config.Port)

	server := NewServer(repo, config, NewMetrics())

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof(ctx, "starting fieldnotes REST API server on %s", addr)
		logging.Infof(ctx, "metrics available at http://%s/metrics", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logging.Infof(ctx, "shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
