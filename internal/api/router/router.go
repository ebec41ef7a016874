package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	httpmiddleware "github.com/wolfman30/mindscreen/internal/http/middleware"
	"github.com/wolfman30/mindscreen/internal/screening"
	"github.com/wolfman30/mindscreen/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Screening          *screening.Handler
	PatientAuthSecret  string
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	Gatherer           prometheus.Gatherer
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter
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
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Patient routes (subject of the JWT is the patient id)
	if cfg.Screening != nil {
		r.Group(func(patient chi.Router) {
			patient.Use(httpmiddleware.PatientJWT(cfg.PatientAuthSecret))
			if cfg.RateLimiter != nil {
				patient.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
			}
			cfg.Screening.Routes(patient)
		})
	}

	if cfg.AdminAuthSecret != "" && cfg.Gatherer != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/stats", NewStatsHandler(cfg.Gatherer, cfg.Logger).ServeHTTP)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
