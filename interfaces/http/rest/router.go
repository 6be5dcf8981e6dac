package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	cmdbus "github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	querybus "github.com/modryn-studio/ProjectLoom-sub000/application/queries/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	domaincfg "github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/interfaces/http/rest/handlers"
	"github.com/modryn-studio/ProjectLoom-sub000/interfaces/http/rest/middleware"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/auth"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *cmdbus.CommandBus
	queryBus     *querybus.QueryBus
	domainConfig domaincfg.Provider
	actions      *services.ActionExecutor
	jwtValidator *auth.JWTValidator
	rateLimiter  auth.RateLimiter
	errors       *pkgerrors.ErrorHandler
	logger       *zap.Logger

	EnableMetrics bool
	EnableCORS    bool
}

// NewRouter creates a new router instance. jwtValidator may be nil, in
// which case the API runs in single-user mode without authentication.
func NewRouter(
	commandBus *cmdbus.CommandBus,
	queryBus *querybus.QueryBus,
	domainConfig domaincfg.Provider,
	actions *services.ActionExecutor,
	jwtValidator *auth.JWTValidator,
	rateLimiter auth.RateLimiter,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		domainConfig: domainConfig,
		actions:      actions,
		jwtValidator: jwtValidator,
		rateLimiter:  rateLimiter,
		errors:       errors,
		logger:       logger,

		EnableMetrics: true,
		EnableCORS:    true,
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
	if rt.EnableMetrics {
		router.Use(middleware.Metrics())
	}

	if rt.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "tauri://localhost"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health and metrics
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.EnableMetrics {
		router.Handle("/metrics", observability.Handler())
	}

	workspaceHandler := handlers.NewWorkspaceHandler(rt.commandBus, rt.queryBus, rt.errors, rt.logger)
	cardHandler := handlers.NewCardHandler(rt.commandBus, rt.queryBus, rt.domainConfig, rt.errors, rt.logger)
	graphHandler := handlers.NewGraphHandler(rt.commandBus, rt.queryBus, rt.domainConfig, rt.errors, rt.logger)
	historyHandler := handlers.NewHistoryHandler(rt.commandBus, rt.queryBus, rt.errors, rt.logger)
	actionHandler := handlers.NewActionHandler(rt.actions, rt.errors, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.rateLimiter))
		r.Use(middleware.Authenticate(rt.jwtValidator, rt.logger))

		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/", workspaceHandler.CreateWorkspace)
			r.Get("/", workspaceHandler.ListWorkspaces)

			r.Route("/{workspaceID}", func(r chi.Router) {
				r.Get("/", workspaceHandler.GetWorkspace)
				r.Delete("/", workspaceHandler.DeleteWorkspace)
				r.Put("/instructions", workspaceHandler.SetInstructions)
				r.Post("/documents", workspaceHandler.AddDocument)

				r.Get("/graph", graphHandler.GetGraph)
				r.Post("/merges", graphHandler.Merge)
				r.Post("/layout", graphHandler.ApplyLayout)

				r.Post("/actions", actionHandler.Execute)

				r.Get("/history", historyHandler.Status)
				r.Post("/undo", historyHandler.Undo)
				r.Post("/redo", historyHandler.Redo)

				r.Route("/cards", func(r chi.Router) {
					r.Post("/", cardHandler.CreateCard)

					r.Route("/{cardID}", func(r chi.Router) {
						r.Get("/", cardHandler.GetCard)
						r.Patch("/", cardHandler.UpdateCard)
						r.Delete("/", cardHandler.DeleteCard)
						r.Get("/context", graphHandler.GetContext)
						r.Post("/messages", cardHandler.AppendMessage)
						r.Post("/chat", cardHandler.Chat)
						r.Post("/branches", cardHandler.Branch)
						r.Post("/parents", cardHandler.AddParent)
					})
				})
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
