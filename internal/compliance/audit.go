// Package compliance records an immutable audit trail of clinically significant screening events.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AuditEventType represents the type of compliance event.
type AuditEventType string

const (
	// EventQuestionnaireOverride is logged when a patient starts a questionnaire other than the recommended one.
	EventQuestionnaireOverride AuditEventType = "screening.questionnaire_override"
	// EventForcedDiagnosis is logged when screening hit its turn limit without a structured result.
	EventForcedDiagnosis AuditEventType = "screening.forced_diagnosis"
	// EventSuicideRisk is logged when a scored questionnaire raises the suicide risk flag.
	EventSuicideRisk AuditEventType = "safety.suicide_risk"
	// EventReportStored is logged when a diagnosis report is persisted.
	EventReportStored AuditEventType = "report.stored"
	// EventDisclaimerSent is logged when a disclaimer is attached to patient-facing output.
	EventDisclaimerSent AuditEventType = "compliance.disclaimer_sent"
)

// AuditEvent represents an immutable compliance audit record.
type AuditEvent struct {
	ID        string          `json:"id"`
	EventType AuditEventType  `json:"event_type"`
	PatientID string          `json:"patient_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Labels    []string        `json:"labels,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditDetails contains event-specific details.
type AuditDetails struct {
	RecommendedQuestionnaire string `json:"recommended_questionnaire,omitempty"`
	ChosenQuestionnaire      string `json:"chosen_questionnaire,omitempty"`

	ScreeningTurns int `json:"screening_turns,omitempty"`

	QuestionnaireID string `json:"questionnaire_id,omitempty"`
	Flag            string `json:"flag,omitempty"`

	ReportID string `json:"report_id,omitempty"`

	DisclaimerLevel string `json:"disclaimer_level,omitempty"`
}

// AuditService handles compliance audit logging.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// LogEvent records a compliance audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Labels == nil {
		event.Labels = []string{}
	}

	query := `
		INSERT INTO compliance_audit_events (
			id, event_type, patient_id, session_id, labels, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		nullString(event.PatientID),
		nullString(event.SessionID),
		pq.Array(event.Labels),
		[]byte(event.Details),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}
	return nil
}

func (s *AuditService) log(ctx context.Context, eventType AuditEventType, patientID, sessionID string, labels []string, details AuditDetails) error {
	detailsJSON, _ := json.Marshal(details)
	return s.LogEvent(ctx, AuditEvent{
		EventType: eventType,
		PatientID: patientID,
		SessionID: sessionID,
		Labels:    labels,
		Details:   detailsJSON,
	})
}

// LogQuestionnaireOverride logs a patient choosing a questionnaire other than the recommendation.
func (s *AuditService) LogQuestionnaireOverride(ctx context.Context, sessionID, patientID, recommended, chosen string) error {
	return s.log(ctx, EventQuestionnaireOverride, patientID, sessionID, []string{chosen}, AuditDetails{
		RecommendedQuestionnaire: recommended,
		ChosenQuestionnaire:      chosen,
	})
}

// LogForcedDiagnosis logs the fallback diagnosis applied after the screening turn limit.
func (s *AuditService) LogForcedDiagnosis(ctx context.Context, sessionID, patientID string, turns int) error {
	return s.log(ctx, EventForcedDiagnosis, patientID, sessionID, nil, AuditDetails{ScreeningTurns: turns})
}

// LogSuicideRisk logs a raised suicide risk flag. The responses themselves are not stored.
func (s *AuditService) LogSuicideRisk(ctx context.Context, sessionID, patientID, questionnaireID string) error {
	return s.log(ctx, EventSuicideRisk, patientID, sessionID, []string{"urgent"}, AuditDetails{
		QuestionnaireID: questionnaireID,
		Flag:            "suicide_risk",
	})
}

// LogReportStored logs a persisted diagnosis report.
func (s *AuditService) LogReportStored(ctx context.Context, sessionID, patientID, reportID string) error {
	return s.log(ctx, EventReportStored, patientID, sessionID, nil, AuditDetails{ReportID: reportID})
}

// LogDisclaimerSent logs when a disclaimer is added to patient-facing output.
func (s *AuditService) LogDisclaimerSent(ctx context.Context, sessionID, patientID, level string) error {
	return s.log(ctx, EventDisclaimerSent, patientID, sessionID, nil, AuditDetails{DisclaimerLevel: level})
}

// QueryEvents retrieves audit events with filters.
func (s *AuditService) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	query := `
		SELECT id, event_type, patient_id, session_id, labels, details, created_at
		FROM compliance_audit_events
		WHERE 1 = 1
	`
	var args []interface{}
	argIdx := 1

	if filter.PatientID != "" {
		query += fmt.Sprintf(" AND patient_id = $%d", argIdx)
		args = append(args, filter.PatientID)
		argIdx++
	}
	if filter.SessionID != "" {
		query += fmt.Sprintf(" AND session_id = $%d", argIdx)
		args = append(args, filter.SessionID)
		argIdx++
	}
	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var patientID, sessionID sql.NullString
		var details []byte
		err := rows.Scan(
			&e.ID, &e.EventType, &patientID, &sessionID, pq.Array(&e.Labels), &details, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.PatientID = patientID.String
		e.SessionID = sessionID.String
		e.Details = details
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("compliance: failed to iterate audit events: %w", err)
	}
	return events, nil
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	PatientID string
	SessionID string
	EventType AuditEventType
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
