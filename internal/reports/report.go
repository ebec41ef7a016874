// Package reports persists, renders and distributes diagnosis reports.
package reports

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a report does not exist for the requesting patient.
	ErrNotFound = errors.New("reports: report not found")
	// ErrIDConflict is returned when a report id is already owned by another patient.
	ErrIDConflict = errors.New("reports: report id belongs to another patient")
)

// Report is the stored outcome of a completed screening session.
type Report struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	DoctorID        string    `json:"doctor_id,omitempty"`
	SessionID       string    `json:"session_id"`
	Diagnosis       string    `json:"diagnosis"`
	Details         string    `json:"details"`
	Symptoms        []string  `json:"symptoms"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
	IsPhysical      bool      `json:"is_physical"`
	LLMAnalysis     string    `json:"llm_analysis,omitempty"`
}

// Clone returns a deep copy.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Symptoms = append([]string(nil), r.Symptoms...)
	out.Recommendations = append([]string(nil), r.Recommendations...)
	return &out
}

// Store persists reports. StoreReport assigns and returns the report id.
type Store interface {
	StoreReport(ctx context.Context, patientID string, report *Report) (string, error)
	GetReport(ctx context.Context, patientID, reportID string) (*Report, error)
	ListReports(ctx context.Context, patientID string, limit int) ([]*Report, error)
}

func validate(patientID string, report *Report) error {
	if strings.TrimSpace(patientID) == "" {
		return errors.New("reports: patient id is required")
	}
	if report == nil {
		return errors.New("reports: report is nil")
	}
	return nil
}
