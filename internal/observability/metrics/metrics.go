package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "mindscreen"

// ScreeningMetrics exposes counters/histograms for screening sessions and model calls.
type ScreeningMetrics struct {
	sessionsStarted  prometheus.Counter
	phaseTransitions *prometheus.CounterVec
	answersRecorded  *prometheus.CounterVec
	forcedDiagnoses  prometheus.Counter
	criteriaSearches *prometheus.CounterVec
	reportsStored    *prometheus.CounterVec

	gateWait   prometheus.Histogram
	llmLatency *prometheus.HistogramVec
	llmTokens  *prometheus.CounterVec
}

func NewScreeningMetrics(reg prometheus.Registerer) *ScreeningMetrics {
	m := &ScreeningMetrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "sessions_started_total",
			Help:      "Total screening sessions started",
		}),
		phaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "phase_transitions_total",
			Help:      "Session phase transitions",
		}, []string{"from", "to"}),
		answersRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "answers_recorded_total",
			Help:      "Questionnaire answers recorded",
		}, []string{"questionnaire"}),
		forcedDiagnoses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "forced_diagnoses_total",
			Help:      "Screenings that reached the turn limit without a structured result",
		}),
		criteriaSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "criteria_searches_total",
			Help:      "Diagnostic criteria searches",
		}, []string{"status"}),
		reportsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "stored_total",
			Help:      "Diagnosis report persistence attempts",
		}, []string{"status"}),
		gateWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "gate_wait_seconds",
			Help:      "Time spent waiting for rate limit capacity",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
		}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "latency_seconds",
			Help:      "Latency of language model calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model", "status"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens consumed by language model calls",
		}, []string{"model", "type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.sessionsStarted, m.phaseTransitions, m.answersRecorded, m.forcedDiagnoses,
		m.criteriaSearches, m.reportsStored, m.gateWait, m.llmLatency, m.llmTokens,
	)
	return m
}

func (m *ScreeningMetrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *ScreeningMetrics) PhaseTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.phaseTransitions.WithLabelValues(from, to).Inc()
}

func (m *ScreeningMetrics) AnswerRecorded(questionnaireID string) {
	if m == nil {
		return
	}
	m.answersRecorded.WithLabelValues(questionnaireID).Inc()
}

func (m *ScreeningMetrics) ForcedDiagnosis() {
	if m == nil {
		return
	}
	m.forcedDiagnoses.Inc()
}

func (m *ScreeningMetrics) CriteriaSearch(status string) {
	if m == nil {
		return
	}
	m.criteriaSearches.WithLabelValues(status).Inc()
}

func (m *ScreeningMetrics) ReportStored(status string) {
	if m == nil {
		return
	}
	m.reportsStored.WithLabelValues(status).Inc()
}

// ObserveGateWait implements llm.Observer.
func (m *ScreeningMetrics) ObserveGateWait(seconds float64) {
	if m == nil {
		return
	}
	m.gateWait.Observe(seconds)
}

// ObserveCompletion implements llm.Observer.
func (m *ScreeningMetrics) ObserveCompletion(model, status string, seconds float64, inputTokens, outputTokens int32) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(model, status).Observe(seconds)
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}
