package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mindscreen/internal/http/middleware"
	"github.com/wolfman30/mindscreen/internal/llm"
	"github.com/wolfman30/mindscreen/internal/questionnaire"
	"github.com/wolfman30/mindscreen/internal/reports"
	"github.com/wolfman30/mindscreen/internal/session"
)

const testSecret = "patient-secret"

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.PatientJWT(testSecret))
	NewHandler(f.svc, f.reports, nil).Routes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, patientID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if patientID != "" {
		token, err := middleware.IssueToken(testSecret, patientID, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerSessionFlow(t *testing.T) {
	f := newFixture(t)
	f.llm.screening = []string{mddDiagnosis}
	h := newTestRouter(f)

	rec := doRequest(t, h, http.MethodPost, "/sessions", "patient-1", `{"patient_info":{"name":"Alex","chief_complaints":["low mood"]}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var started StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, session.PhaseScreening, started.Phase)

	base := "/sessions/" + started.SessionID
	rec = doRequest(t, h, http.MethodPost, base+"/messages", "patient-1", `{"text":"I feel low"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var msg MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, session.PhaseScreeningComplete, msg.Phase)

	rec = doRequest(t, h, http.MethodPost, base+"/assessment", "patient-1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var item AssessmentItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, questionnaire.DASS21, item.QuestionnaireID)
	assert.Len(t, item.Options, 4)

	rec = doRequest(t, h, http.MethodPost, base+"/answers", "patient-1", `{"value":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, base+"/answers", "patient-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, base, "patient-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, session.PhaseAssessment, st.Phase)
	assert.Equal(t, 21, st.Progress.Total)

	rec = doRequest(t, h, http.MethodPost, base+"/report", "patient-1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerHidesOtherPatientsSessions(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)
	id := f.start(t)

	rec := doRequest(t, h, http.MethodGet, "/sessions/"+id, "intruder", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/sessions/"+id+"/messages", "intruder", `{"text":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/sessions/"+id, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlerMapsModelErrors(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)
	id := f.start(t)

	f.llm.err = fmt.Errorf("%w after 30s", llm.ErrLLMTimeout)
	rec := doRequest(t, h, http.MethodPost, "/sessions/"+id+"/messages", "patient-1", `{"text":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "please try again")

	f.llm.err = fmt.Errorf("%w: boom", llm.ErrLLMCallFailed)
	rec = doRequest(t, h, http.MethodPost, "/sessions/"+id+"/messages", "patient-1", `{"text":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/sessions/"+id+"/messages", "patient-1", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerReports(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)
	_, err := f.reports.StoreReport(context.Background(), "patient-1", &reports.Report{
		ID:              "rep-1",
		Diagnosis:       "Generalized Anxiety Disorder",
		Details:         "Moderate anxiety.",
		Recommendations: []string{"CBT"},
		CreatedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	rec := doRequest(t, h, http.MethodGet, "/reports", "patient-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rep-1"`)

	rec = doRequest(t, h, http.MethodGet, "/reports", "patient-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reports":[]}`, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/reports/rep-1", "patient-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/reports/rep-1?format=markdown", "patient-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "## Diagnosis")

	rec = doRequest(t, h, http.MethodGet, "/reports/rep-1?format=html", "patient-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = doRequest(t, h, http.MethodGet, "/reports?limit=0", "patient-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerListQuestionnaires(t *testing.T) {
	h := newTestRouter(newFixture(t))
	rec := doRequest(t, h, http.MethodGet, "/questionnaires", "patient-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Questionnaires []questionnaire.Summary `json:"questionnaires"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Questionnaires, 4)
}

func TestHandlerStartSessionAcceptsTopLevelComplaints(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	rec := doRequest(t, h, http.MethodPost, "/sessions", "patient-1",
		`{"patient_info":{"name":"Alex","chief_complaints":["low mood"]},"chief_complaints":["poor sleep"," "]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var started StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))

	sess := f.load(t, started.SessionID)
	assert.Equal(t, []string{"low mood", "poor sleep"}, sess.Patient.ChiefComplaints)
}
