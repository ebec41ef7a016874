package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("mindscreen.internal.reports")

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists reports in the diagnosis_reports table.
type PostgresStore struct {
	db pgQuerier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("reports: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

func newPostgresStoreWithQuerier(db pgQuerier) *PostgresStore {
	if db == nil {
		panic("reports: querier required")
	}
	return &PostgresStore{db: db}
}

const (
	reportColumns = `id, patient_id, doctor_id, session_id, diagnosis, details, symptoms, recommendations, created_at, is_physical, llm_analysis`
	selectColumns = `id, patient_id, COALESCE(doctor_id, ''), session_id, diagnosis, details, symptoms, recommendations, created_at, is_physical, llm_analysis`
)

// StoreReport upserts by id so a retried store after a lost acknowledgement writes one row.
// The WHERE clause keeps an id owned by one patient from being overwritten by another.
func (s *PostgresStore) StoreReport(ctx context.Context, patientID string, report *Report) (string, error) {
	if err := validate(patientID, report); err != nil {
		return "", err
	}
	ctx, span := tracer.Start(ctx, "reports.store")
	defer span.End()

	id := report.ID
	if id == "" {
		id = uuid.NewString()
	}
	span.SetAttributes(attribute.String("mindscreen.report_id", id))

	query := `
		INSERT INTO diagnosis_reports (` + reportColumns + `)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			diagnosis = EXCLUDED.diagnosis,
			details = EXCLUDED.details,
			symptoms = EXCLUDED.symptoms,
			recommendations = EXCLUDED.recommendations,
			llm_analysis = EXCLUDED.llm_analysis
		WHERE diagnosis_reports.patient_id = EXCLUDED.patient_id
	`
	tag, err := s.db.Exec(ctx, query,
		id, patientID, report.DoctorID, report.SessionID, report.Diagnosis, report.Details,
		nonNil(report.Symptoms), nonNil(report.Recommendations), report.CreatedAt, report.IsPhysical, report.LLMAnalysis,
	)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("reports: insert report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", ErrIDConflict
	}
	return id, nil
}

func (s *PostgresStore) GetReport(ctx context.Context, patientID, reportID string) (*Report, error) {
	ctx, span := tracer.Start(ctx, "reports.get")
	defer span.End()

	query := `SELECT ` + selectColumns + ` FROM diagnosis_reports WHERE id = $1 AND patient_id = $2`
	report, err := scanReport(s.db.QueryRow(ctx, query, reportID, patientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("reports: get report: %w", err)
	}
	return report, nil
}

// ListReports returns the patient's reports, newest first.
func (s *PostgresStore) ListReports(ctx context.Context, patientID string, limit int) ([]*Report, error) {
	ctx, span := tracer.Start(ctx, "reports.list")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + selectColumns + ` FROM diagnosis_reports WHERE patient_id = $1 ORDER BY created_at DESC, id LIMIT $2`
	rows, err := s.db.Query(ctx, query, patientID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reports: list reports: %w", err)
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("reports: scan report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: list reports: %w", err)
	}
	return out, nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var r Report
	if err := row.Scan(&r.ID, &r.PatientID, &r.DoctorID, &r.SessionID, &r.Diagnosis, &r.Details,
		&r.Symptoms, &r.Recommendations, &r.CreatedAt, &r.IsPhysical, &r.LLMAnalysis); err != nil {
		return nil, err
	}
	return &r, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
