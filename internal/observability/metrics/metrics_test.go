package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreeningMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewScreeningMetrics(reg)

	m.SessionStarted()
	m.SessionStarted()
	m.PhaseTransition("Screening", "ScreeningComplete")
	m.PhaseTransition("Screening", "Screening")
	m.AnswerRecorded("GAD7")
	m.ForcedDiagnosis()
	m.CriteriaSearch("ok")
	m.ReportStored("ok")
	m.ObserveGateWait(0.2)
	m.ObserveCompletion("gpt-3.5-turbo", "ok", 1.2, 100, 20)
	m.ObserveCompletion("gpt-3.5-turbo", "error", 0.1, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.phaseTransitions.WithLabelValues("Screening", "ScreeningComplete")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.phaseTransitions.WithLabelValues("Screening", "Screening")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.llmTokens.WithLabelValues("gpt-3.5-turbo", "input")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "mindscreen_screening_sessions_started_total")
	assert.Contains(t, names, "mindscreen_llm_gate_wait_seconds")
}

func TestScreeningMetricsNilSafe(t *testing.T) {
	var m *ScreeningMetrics
	m.SessionStarted()
	m.PhaseTransition("a", "b")
	m.AnswerRecorded("x")
	m.ForcedDiagnosis()
	m.CriteriaSearch("ok")
	m.ReportStored("ok")
	m.ObserveGateWait(1)
	m.ObserveCompletion("m", "ok", 1, 1, 1)
}
