package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/mindscreen/internal/config"
)

func TestSetupMetricsExposesScreeningCounters(t *testing.T) {
	handler, reg, m := setupMetrics()
	require.NotNil(t, handler)
	require.NotNil(t, reg)
	require.NotNil(t, m)

	m.SessionStarted()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "mindscreen_screening_sessions_started_total 1")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestNeedsAWS(t *testing.T) {
	assert.False(t, needsAWS(&appconfig.Config{SessionStore: "memory", LLMProvider: "openai"}))
	assert.True(t, needsAWS(&appconfig.Config{SessionStore: "dynamodb"}))
	assert.True(t, needsAWS(&appconfig.Config{LLMProvider: "openai", LLMFallbackProvider: "bedrock"}))
	assert.True(t, needsAWS(&appconfig.Config{ReportArchiveBucket: "reports"}))
	assert.True(t, needsAWS(&appconfig.Config{ReportEventsQueue: "http://localhost:4566/queue/reports"}))
}
