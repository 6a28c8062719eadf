// Package router assembles the HTTP surface: the concierge chat endpoint,
// the explorer read API and the pipeline ops endpoint.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appMiddleware "github.com/trailwise-ai/trailwise/app/middleware"
	"github.com/trailwise-ai/trailwise/internal/api/explorer"
	"github.com/trailwise-ai/trailwise/internal/api/orchestrator"
)

// Config carries the handlers and settings the router mounts.
type Config struct {
	ChatHandler     *orchestrator.Handler
	ExplorerHandler *explorer.Handler
	MetricsHandler  http.Handler
	OpsAPIKey       string
}

// SetupRouter wires all routes. Server-wide middleware (request ID, logger,
// recoverer) is applied by the caller before mounting.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Route("/parks", func(r chi.Router) {
			r.Get("/", cfg.ExplorerHandler.ListParks)
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", cfg.ExplorerHandler.GetPark)
				r.Get("/trails", cfg.ExplorerHandler.GetTrails)
				r.Get("/weather", cfg.ExplorerHandler.GetWeather)
				r.Get("/alerts", cfg.ExplorerHandler.GetAlerts)
				r.Get("/events", cfg.ExplorerHandler.GetEvents)
				r.Get("/amenities", cfg.ExplorerHandler.GetAmenities)

				r.Group(func(r chi.Router) {
					r.Use(appMiddleware.RequireOpsKey(cfg.OpsAPIKey))
					r.Post("/ensure", cfg.ExplorerHandler.Ensure)
				})
			})
		})
	})

	return r
}
