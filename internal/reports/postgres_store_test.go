package reports

import (
	"context"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportRowColumns = []string{"id", "patient_id", "doctor_id", "session_id", "diagnosis", "details", "symptoms", "recommendations", "created_at", "is_physical", "llm_analysis"}

func TestPostgresStoreStoreReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := sampleReport("rep-1", at)

	mock.ExpectExec("INSERT INTO diagnosis_reports").
		WithArgs("rep-1", "p1", "", "sess-1", r.Diagnosis, r.Details, r.Symptoms, r.Recommendations, at, false, r.LLMAnalysis).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := store.StoreReport(context.Background(), "p1", r)
	require.NoError(t, err)
	assert.Equal(t, "rep-1", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreConflictWithOtherPatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := sampleReport("rep-1", at)

	mock.ExpectExec("INSERT INTO diagnosis_reports").
		WithArgs("rep-1", "p2", "", "sess-1", r.Diagnosis, r.Details, r.Symptoms, r.Recommendations, at, false, r.LLMAnalysis).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	_, err = store.StoreReport(context.Background(), "p2", r)
	assert.ErrorIs(t, err, ErrIDConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM diagnosis_reports WHERE id").
		WithArgs("rep-1", "p1").
		WillReturnRows(pgxmock.NewRows(reportRowColumns).
			AddRow("rep-1", "p1", "", "sess-1", "GAD", "details", []string{"worry"}, []string{"CBT"}, at, false, "analysis"))

	got, err := store.GetReport(context.Background(), "p1", "rep-1")
	require.NoError(t, err)
	assert.Equal(t, "GAD", got.Diagnosis)
	assert.Equal(t, []string{"worry"}, got.Symptoms)
	assert.Equal(t, at, got.CreatedAt)

	mock.ExpectQuery("FROM diagnosis_reports WHERE id").
		WithArgs("rep-1", "p2").
		WillReturnError(pgx.ErrNoRows)
	_, err = store.GetReport(context.Background(), "p2", "rep-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListReports(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM diagnosis_reports WHERE patient_id").
		WithArgs("p1", 20).
		WillReturnRows(pgxmock.NewRows(reportRowColumns).
			AddRow("rep-2", "p1", "", "sess-2", "GAD", "d2", []string{}, []string{}, at.Add(time.Hour), false, "").
			AddRow("rep-1", "p1", "dr-7", "sess-1", "MDD", "d1", []string{}, []string{}, at, false, ""))

	list, err := store.ListReports(context.Background(), "p1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "rep-2", list[0].ID)
	assert.Equal(t, "dr-7", list[1].DoctorID)
	require.NoError(t, mock.ExpectationsWereMet())
}
