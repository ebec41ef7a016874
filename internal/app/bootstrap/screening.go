package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/mindscreen/internal/compliance"
	"github.com/wolfman30/mindscreen/internal/config"
	"github.com/wolfman30/mindscreen/internal/observability/metrics"
	"github.com/wolfman30/mindscreen/internal/reports"
	"github.com/wolfman30/mindscreen/internal/screening"
	"github.com/wolfman30/mindscreen/internal/session"
	"github.com/wolfman30/mindscreen/pkg/logging"
)

// BuildReportStore returns the Postgres store when a pool is available, wrapped with the
// S3 archive and SQS notifications when those are configured.
func BuildReportStore(cfg *config.Config, pool *pgxpool.Pool, awsCfg *aws.Config, logger *logging.Logger) reports.Store {
	if logger == nil {
		logger = logging.Default()
	}
	var store reports.Store
	if pool != nil {
		store = reports.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set; reports are kept in memory")
		store = reports.NewMemoryStore()
	}
	if awsCfg == nil || (cfg.ReportArchiveBucket == "" && cfg.ReportEventsQueue == "") {
		return store
	}

	var archive *reports.Archive
	if cfg.ReportArchiveBucket != "" {
		archive = reports.NewArchive(s3.NewFromConfig(*awsCfg), cfg.ReportArchiveBucket, logger)
	}
	var publisher reports.EventPublisher
	if cfg.ReportEventsQueue != "" {
		publisher = reports.NewPublisher(sqs.NewFromConfig(*awsCfg), cfg.ReportEventsQueue)
	}
	return reports.NewDistributingStore(store, archive, publisher, logger)
}

// BuildScreeningService wires the state machine with criteria retrieval, auditing and
// the disclaimer policy.
func BuildScreeningService(ctx context.Context, cfg *config.Config, sessions session.Store, completer screening.Completer,
	reportStore reports.Store, auditDB *sql.DB, m *metrics.ScreeningMetrics, awsCfg *aws.Config, logger *logging.Logger) (*screening.Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	searcher, err := BuildCriteriaSearcher(ctx, BuildEmbedder(cfg, awsCfg), logger)
	if err != nil {
		return nil, err
	}

	opts := []screening.Option{
		screening.WithCriteriaSearcher(searcher),
		screening.WithReportStore(reportStore),
		screening.WithLimits(cfg.MaxScreeningTurns, cfg.MaxCriteriaSearches, cfg.CriteriaTopK),
		screening.WithModel("", float32(cfg.LLMTemperature), int32(cfg.LLMMaxTokens)),
	}
	if m != nil {
		opts = append(opts, screening.WithRecorder(m))
	}
	var audit *compliance.AuditService
	if auditDB != nil {
		audit = compliance.NewAuditService(auditDB)
		opts = append(opts, screening.WithAuditLogger(audit))
	}
	opts = append(opts, screening.WithDisclaimer(compliance.NewDisclaimerService(audit, compliance.DefaultDisclaimerConfig())))

	return screening.NewService(sessions, completer, logger, opts...), nil
}
