package apiserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/infrastructure/config"
	"github.com/alchemorsel/mealguard/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/mealguard/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealguard/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealguard/internal/ports/inbound"
	"github.com/alchemorsel/mealguard/pkg/errors"
	"github.com/alchemorsel/mealguard/pkg/healthcheck"
)

// Server is the JSON API HTTP server
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	server     *http.Server
	router     *chi.Mux
	generation inbound.GenerationService
	sessions   inbound.SessionService
	health     *healthcheck.HealthCheck
	metrics    *monitoring.MetricsCollector
	limiter    *middleware.RateLimiter
	openAPI    *OpenAPIHandler
}

// NewServer creates a new API server instance. metrics may be nil when
// metrics are disabled.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	gen inbound.GenerationService,
	sessions inbound.SessionService,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
) (*Server, error) {
	openAPI, err := NewOpenAPIHandler(log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:     cfg,
		logger:     log.Named("api-server"),
		generation: gen,
		sessions:   sessions,
		health:     health,
		metrics:    metrics,
		openAPI:    openAPI,
	}
	if cfg.RateLimit.Enable {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, middleware.SessionKey, log)
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}
	r.Use(middleware.Security)
	r.Use(middleware.CORS(s.config.Server.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, errors.NewNotFoundError("route"))
	})

	r.Get("/health", s.health.Handler())
	r.Get("/health/live", s.health.LivenessHandler())
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.JSONOnly)
		r.Get("/openapi.yaml", s.openAPI.ServeOpenAPISpec)
		r.Get("/openapi.json", s.openAPI.ServeOpenAPIJSON)
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *Server) setupAPIV1Routes(r chi.Router) {
	sessionH := handlers.NewSessionHandlers(s.sessions, s.logger)
	genH := handlers.NewGenerationHandlers(s.generation, s.sessions, s.logger)

	r.Post("/sessions", sessionH.Create)

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Handler)
		}

		r.Get("/", sessionH.Get)
		r.Patch("/", sessionH.Update)
		r.Delete("/", sessionH.Delete)

		r.Post("/allergies", sessionH.AddAllergy)
		r.Delete("/allergies/{value}", sessionH.RemoveAllergy)
		r.Post("/conditions", sessionH.AddCondition)
		r.Delete("/conditions/{value}", sessionH.RemoveCondition)

		r.Post("/recipes/by-ingredients", genH.SearchByIngredients)
		r.Post("/recipes/by-budget", genH.SearchByBudget)
		r.Post("/nutrition/daily-plan", genH.PlanDailyNutrition)
		r.Post("/groceries", genH.PlanGroceries)
	})

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Handler)
		}
		r.Get("/harm", genH.LookupHarm)
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if timeout := s.config.Server.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.server.Shutdown(ctx)
}
