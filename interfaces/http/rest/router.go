package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mindgraph/infrastructure/config"
	"mindgraph/interfaces/http/rest/handlers"
	"mindgraph/interfaces/http/rest/middleware"
	"mindgraph/pkg/observability"
)

// Handlers groups the route handlers the router wires up
type Handlers struct {
	Graph      *handlers.GraphHandler
	Note       *handlers.NoteHandler
	Scan       *handlers.ScanHandler
	Connection *handlers.ConnectionHandler
}

// NewRouter builds the HTTP router with middleware and all routes
func NewRouter(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Logger(logger))

	if cfg.EnableMetrics {
		r.Use(middleware.Metrics(metrics))
	}

	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if cfg.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/graph-data", h.Graph.GetGraphData)

		r.Route("/notes/{noteID}", func(r chi.Router) {
			r.Get("/suggestions", h.Note.GetSuggestions)
			r.Post("/scan", h.Note.ScanNote)
		})

		r.Post("/scan", h.Scan.StartScan)
		r.Get("/operations/{operationID}", h.Scan.GetOperation)

		r.Post("/connections", h.Connection.CreateConnection)
	})

	return r
}
