package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpmiddleware "github.com/wolfman30/mindscreen/internal/http/middleware"
	"github.com/wolfman30/mindscreen/internal/llm"
	"github.com/wolfman30/mindscreen/internal/observability/metrics"
	"github.com/wolfman30/mindscreen/internal/reports"
	"github.com/wolfman30/mindscreen/internal/screening"
	"github.com/wolfman30/mindscreen/internal/session"
	"github.com/wolfman30/mindscreen/pkg/logging"
)

type fixture struct {
	handler http.Handler
	metrics *metrics.ScreeningMetrics
}

func newTestRouter(t *testing.T) fixture {
	t.Helper()
	logger := logging.Default()
	reg := prometheus.NewRegistry()
	m := metrics.NewScreeningMetrics(reg)
	reportStore := reports.NewMemoryStore()
	svc := screening.NewService(session.NewMemoryStore(), llm.NewStubClient(), logger,
		screening.WithReportStore(reportStore),
		screening.WithRecorder(m),
	)
	return fixture{
		metrics: m,
		handler: New(&Config{
			Logger:             logger,
			Screening:          screening.NewHandler(svc, reportStore, logger),
			PatientAuthSecret:  "patient-secret",
			AdminAuthSecret:    "admin-secret",
			MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			Gatherer:           reg,
			CORSAllowedOrigins: []string{"https://app.example.com"},
			RateLimiter:        httpmiddleware.NewRateLimiter(100, 100),
		}),
	}
}

func bearer(t *testing.T, secret, subject string) string {
	t.Helper()
	token, err := httpmiddleware.IssueToken(secret, subject, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouterHealthEndpoint(t *testing.T) {
	f := newTestRouter(t)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestRouterPatientRoutesRequireAuth(t *testing.T) {
	f := newTestRouter(t)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/questionnaires", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/questionnaires", nil)
	req.Header.Set("Authorization", bearer(t, "patient-secret", "p1"))
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterAdminStats(t *testing.T) {
	f := newTestRouter(t)
	f.metrics.SessionStarted()
	f.metrics.SessionStarted()

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", bearer(t, "patient-secret", "p1"))
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "patient tokens are not admin tokens")

	req = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", bearer(t, "admin-secret", "ops"))
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Metrics []MetricSummary `json:"metrics"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	var found bool
	for _, m := range body.Metrics {
		if m.Name == "screening_sessions_started_total" {
			found = true
			assert.Equal(t, 2.0, m.Values[""])
		}
	}
	assert.True(t, found)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	f := newTestRouter(t)
	f.metrics.ForcedDiagnosis()

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "mindscreen_screening_forced_diagnoses_total")
}

func TestRouterCORSPreflight(t *testing.T) {
	f := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
