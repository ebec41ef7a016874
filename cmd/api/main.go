package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/mindscreen/cmd/mainconfig"
	"github.com/wolfman30/mindscreen/internal/api/router"
	"github.com/wolfman30/mindscreen/internal/app/bootstrap"
	appconfig "github.com/wolfman30/mindscreen/internal/config"
	httpmiddleware "github.com/wolfman30/mindscreen/internal/http/middleware"
	"github.com/wolfman30/mindscreen/internal/observability/metrics"
	"github.com/wolfman30/mindscreen/internal/screening"
	"github.com/wolfman30/mindscreen/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting mindscreen API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var awsCfg *aws.Config
	if needsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		awsCfg = &loaded
	}

	pool, auditDB, err := bootstrap.OpenDatabases(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		defer func() { _ = auditDB.Close() }()
	}

	sessions, err := bootstrap.BuildSessionStore(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build session store", "error", err)
		os.Exit(1)
	}

	metricsHandler, registry, screeningMetrics := setupMetrics()

	client, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build llm client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closeLLM() }()
	gate := bootstrap.BuildGate(client, cfg, screeningMetrics, logger)

	reportStore := bootstrap.BuildReportStore(cfg, pool, awsCfg, logger)
	svc, err := bootstrap.BuildScreeningService(ctx, cfg, sessions, gate, reportStore, auditDB, screeningMetrics, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build screening service", "error", err)
		os.Exit(1)
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.HTTPRateLimitRPS, cfg.HTTPRateLimitBurst)
	go limiter.Run(ctx, time.Minute, 10*time.Minute)

	if cfg.PatientJWTSecret == "" {
		logger.Warn("PATIENT_JWT_SECRET not set; all patient routes will reject requests")
	}

	r := router.New(&router.Config{
		Logger:             logger,
		Screening:          screening.NewHandler(svc, reportStore, logger),
		PatientAuthSecret:  cfg.PatientJWTSecret,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		Gatherer:           registry,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.LLMCallTimeout,
		IdleTimeout:  60 * time.Second,
	}
	if srv.WriteTimeout < 15*time.Second {
		srv.WriteTimeout = 15 * time.Second
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// setupMetrics registers the screening collectors and runtime defaults on a private registry.
func setupMetrics() (http.Handler, *prometheus.Registry, *metrics.ScreeningMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewScreeningMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), reg, m
}

func needsAWS(cfg *appconfig.Config) bool {
	return cfg.SessionStore == "dynamodb" ||
		cfg.LLMProvider == "bedrock" || cfg.LLMFallbackProvider == "bedrock" ||
		cfg.ReportArchiveBucket != "" || cfg.ReportEventsQueue != ""
}
