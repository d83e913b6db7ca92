package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/travelmate/travelmate-ai/internal/http/middleware"
	"github.com/travelmate/travelmate-ai/internal/orchestrator"
	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger       *logging.Logger
	Orchestrator *orchestrator.Handler
	Plans        *plans.Handler

	MetricsHandler     http.Handler
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitRPS > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.Orchestrator != nil {
			api.Post("/plan-trip", cfg.Orchestrator.PlanTrip)
			api.Post("/approve", cfg.Orchestrator.Approve)
		}
		if cfg.Plans != nil {
			api.Route("/trips/{tripID}/plan", func(plan chi.Router) {
				plan.Get("/", cfg.Plans.GetTripPlan)
				plan.Post("/", cfg.Plans.SaveTripPlan)
			})
			// Status mutation is an operator action, locked behind the admin
			// token when one is configured.
			if cfg.AdminJWTSecret != "" {
				api.With(httpmiddleware.AdminJWT(cfg.AdminJWTSecret)).
					Put("/plans/{planID}/status", cfg.Plans.UpdateStatus)
			} else {
				api.Put("/plans/{planID}/status", cfg.Plans.UpdateStatus)
			}
		}
	})

	return r
}
