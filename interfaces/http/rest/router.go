package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"planner-backend/application/dispatch"
	"planner-backend/application/ports"
	"planner-backend/infrastructure/config"
	"planner-backend/interfaces/http/rest/handlers"
	"planner-backend/interfaces/http/rest/middleware"
	"planner-backend/pkg/observability"
)

const apiVersion = "v1"

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	dispatcher *dispatch.Dispatcher
	entries    ports.EntryRepository
	users      ports.UserRepository
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	dispatcher *dispatch.Dispatcher,
	entries ports.EntryRepository,
	users ports.UserRepository,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		dispatcher: dispatcher,
		entries:    entries,
		users:      users,
		metrics:    metrics,
		tracer:     tracer,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableTracing {
		router.Use(middleware.Tracing(rt.tracer))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.planner.app"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health checks
	healthHandler := handlers.NewHealthHandler(apiVersion, rt.cfg)
	router.Get("/health", healthHandler.Health)
	router.Get("/ready", healthHandler.Ready)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.users, rt.logger))

		inputHandler := handlers.NewInputHandler(rt.dispatcher, rt.metrics, rt.logger)
		r.Post("/input", inputHandler.SubmitInput)

		entryHandler := handlers.NewEntryHandler(rt.entries, rt.logger)
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", entryHandler.ListEntries)
			r.Get("/{entryID}", entryHandler.GetEntry)
		})
	})

	return router
}
