// Package screening drives a patient from conversational screening through a standardized
// questionnaire to a stored diagnosis report.
package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/mindscreen/internal/compliance"
	"github.com/wolfman30/mindscreen/internal/criteria"
	"github.com/wolfman30/mindscreen/internal/llm"
	"github.com/wolfman30/mindscreen/internal/questionnaire"
	"github.com/wolfman30/mindscreen/internal/reports"
	"github.com/wolfman30/mindscreen/internal/session"
	"github.com/wolfman30/mindscreen/pkg/logging"
)

const (
	DefaultMaxScreeningTurns   = 8
	DefaultMaxCriteriaSearches = 3
	DefaultCriteriaTopK        = 3
)

var tracer = otel.Tracer("mindscreen.internal.screening")

// Completer is the rate-limited model call used for every turn. *llm.Gate satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (llm.Response, error)
}

// AuditLogger records clinically significant events. *compliance.AuditService satisfies it.
type AuditLogger interface {
	LogQuestionnaireOverride(ctx context.Context, sessionID, patientID, recommended, chosen string) error
	LogForcedDiagnosis(ctx context.Context, sessionID, patientID string, turns int) error
	LogSuicideRisk(ctx context.Context, sessionID, patientID, questionnaireID string) error
	LogReportStored(ctx context.Context, sessionID, patientID, reportID string) error
}

// Recorder receives screening metrics. *metrics.ScreeningMetrics satisfies it.
type Recorder interface {
	SessionStarted()
	PhaseTransition(from, to string)
	AnswerRecorded(questionnaireID string)
	ForcedDiagnosis()
	CriteriaSearch(status string)
	ReportStored(status string)
}

// Service is the session state machine. Transitions on one session are serialized; a
// transition mutates a loaded copy and saves it once, so a failed step leaves the stored
// session untouched.
type Service struct {
	store    session.Store
	llm      Completer
	registry *questionnaire.Registry
	selector *questionnaire.Selector
	searcher criteria.Searcher
	reports  reports.Store
	audit    AuditLogger
	recorder Recorder
	notice   *compliance.DisclaimerService
	logger   *logging.Logger

	maxScreeningTurns   int
	maxCriteriaSearches int
	criteriaTopK        int
	model               string
	temperature         float32
	maxTokens           int32

	locks *keyedLock
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithRegistry(reg *questionnaire.Registry) Option {
	return func(s *Service) {
		if reg != nil {
			s.registry = reg
		}
	}
}

func WithSelector(sel *questionnaire.Selector) Option {
	return func(s *Service) {
		if sel != nil {
			s.selector = sel
		}
	}
}

// WithCriteriaSearcher enables diagnostic criteria retrieval during screening.
func WithCriteriaSearcher(searcher criteria.Searcher) Option {
	return func(s *Service) { s.searcher = searcher }
}

func WithReportStore(store reports.Store) Option {
	return func(s *Service) { s.reports = store }
}

func WithAuditLogger(audit AuditLogger) Option {
	return func(s *Service) { s.audit = audit }
}

func WithRecorder(rec Recorder) Option {
	return func(s *Service) { s.recorder = rec }
}

// WithDisclaimer attaches a disclaimer to the screening conclusion and report details.
func WithDisclaimer(notice *compliance.DisclaimerService) Option {
	return func(s *Service) { s.notice = notice }
}

// WithLimits bounds screening length. Non-positive values keep the defaults.
func WithLimits(maxTurns, maxSearches, topK int) Option {
	return func(s *Service) {
		if maxTurns > 0 {
			s.maxScreeningTurns = maxTurns
		}
		if maxSearches >= 0 {
			s.maxCriteriaSearches = maxSearches
		}
		if topK > 0 {
			s.criteriaTopK = topK
		}
	}
}

// WithModel sets model parameters for every request. A negative temperature defers to the provider.
func WithModel(model string, temperature float32, maxTokens int32) Option {
	return func(s *Service) {
		s.model = model
		s.temperature = temperature
		if maxTokens > 0 {
			s.maxTokens = maxTokens
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store session.Store, completer Completer, logger *logging.Logger, opts ...Option) *Service {
	if store == nil {
		panic("screening: session store cannot be nil")
	}
	if completer == nil {
		panic("screening: completer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		store:               store,
		llm:                 completer,
		registry:            questionnaire.Default(),
		selector:            questionnaire.DefaultSelector(),
		logger:              logger,
		maxScreeningTurns:   DefaultMaxScreeningTurns,
		maxCriteriaSearches: DefaultMaxCriteriaSearches,
		criteriaTopK:        DefaultCriteriaTopK,
		temperature:         0.7,
		maxTokens:           800,
		locks:               newKeyedLock(),
		now:                 func() time.Time { return time.Now().UTC() },
		newID:               uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRequest opens a new session.
// StartRequest opens a session. ChiefComplaints may be given here or inside Patient;
// both lists are kept.
type StartRequest struct {
	PatientID       string          `json:"patient_id"`
	Patient         session.Patient `json:"patient_info"`
	ChiefComplaints []string        `json:"chief_complaints,omitempty"`
}

type StartResponse struct {
	SessionID string        `json:"session_id"`
	Greeting  string        `json:"greeting"`
	Phase     session.Phase `json:"phase"`
}

// MessageResponse is the reply to a patient message.
type MessageResponse struct {
	Reply                    string                    `json:"reply"`
	Phase                    session.Phase             `json:"phase"`
	Diagnosis                []questionnaire.Candidate `json:"diagnosis,omitempty"`
	RecommendedQuestionnaire string                    `json:"recommended_questionnaire,omitempty"`
}

// AssessmentItem is one questionnaire item presented to the patient.
type AssessmentItem struct {
	QuestionnaireID string                 `json:"questionnaire_id"`
	Index           int                    `json:"index"`
	Total           int                    `json:"total"`
	Prompt          string                 `json:"prompt"`
	Options         []questionnaire.Option `json:"options"`
}

// AnswerResponse carries either the next item or the final results.
type AnswerResponse struct {
	Next    *AssessmentItem            `json:"next,omitempty"`
	Results *questionnaire.ScoreResult `json:"results,omitempty"`
	Phase   session.Phase              `json:"phase"`
}

type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Status is a read-only snapshot of a session.
type Status struct {
	SessionID                string                               `json:"session_id"`
	Phase                    session.Phase                        `json:"phase"`
	Progress                 Progress                             `json:"progress"`
	ActiveQuestionnaire      string                               `json:"active_questionnaire,omitempty"`
	RecommendedQuestionnaire string                               `json:"recommended_questionnaire,omitempty"`
	Diagnosis                []questionnaire.Candidate            `json:"diagnosis,omitempty"`
	Results                  map[string]questionnaire.ScoreResult `json:"results,omitempty"`
	ReportID                 string                               `json:"report_id,omitempty"`
	ScreeningTurns           int                                  `json:"screening_turns"`
}

// StartSession allocates a session in the Screening phase with the opening greeting.
func (s *Service) StartSession(ctx context.Context, req StartRequest) (StartResponse, error) {
	ctx, span := tracer.Start(ctx, "screening.start")
	defer span.End()

	now := s.now()
	patient := req.Patient
	complaints := append(append([]string(nil), patient.ChiefComplaints...), req.ChiefComplaints...)
	patient.ChiefComplaints = cleanList(complaints)
	sess := &session.Session{
		ID:        s.newID(),
		PatientID: req.PatientID,
		Phase:     session.PhaseScreening,
		Patient:   patient,
		CreatedAt: now,
		UpdatedAt: now,
	}
	hello := greeting(patient)
	sess.Append(session.RoleAssistant, hello, now)

	if err := s.store.Save(ctx, sess); err != nil {
		span.RecordError(err)
		return StartResponse{}, fmt.Errorf("screening: save new session: %w", err)
	}
	span.SetAttributes(attribute.String("mindscreen.session_id", sess.ID))
	s.record(func(r Recorder) { r.SessionStarted() })
	s.logger.Info("screening session started", "session_id", sess.ID, "patient_id", sess.PatientID)

	return StartResponse{SessionID: sess.ID, Greeting: hello, Phase: sess.Phase}, nil
}

// CheckOwner returns session.ErrNotFound unless the session belongs to patientID.
func (s *Service) CheckOwner(ctx context.Context, sessionID, patientID string) error {
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.PatientID != patientID {
		return session.ErrNotFound
	}
	return nil
}

// SendMessage handles a patient message. In Screening it advances the screening; in every
// later phase it produces a supportive reply without changing phase.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (MessageResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return MessageResponse{}, ErrEmptyMessage
	}

	ctx, span := tracer.Start(ctx, "screening.message")
	defer span.End()
	span.SetAttributes(attribute.String("mindscreen.session_id", sessionID))

	var resp MessageResponse
	err := s.withSession(ctx, sessionID, func(sess *session.Session) error {
		var err error
		if sess.Phase == session.PhaseScreening {
			resp, err = s.screeningTurn(ctx, sess, text)
		} else {
			resp, err = s.supportTurn(ctx, sess, text)
		}
		return err
	})
	if err != nil {
		span.RecordError(err)
		return MessageResponse{}, err
	}
	return resp, nil
}

func (s *Service) screeningTurn(ctx context.Context, sess *session.Session, text string) (MessageResponse, error) {
	sess.Append(session.RoleUser, text, s.now())
	sess.ScreeningTurns++

	s.searchCriteria(ctx, sess)

	system := append([]string{screeningSystemPrompt(sess.Patient)}, sess.CriteriaContext...)
	out, err := s.llm.Complete(ctx, s.request(system, transcriptMessages(sess.Transcript)))
	if err != nil {
		return MessageResponse{}, err
	}

	match := extractDiagnosis(out.Text)
	if match != nil && match.err != nil {
		s.logger.Debug("diagnosis extraction used defaults", "session_id", sess.ID, "error", match.err)
	}
	reply := visibleReply(out.Text, match)

	var diag *Diagnosis
	switch {
	case match != nil:
		diag = match.diagnosis
	case sess.ScreeningTurns >= s.maxScreeningTurns:
		diag = &Diagnosis{Result: []string{unspecifiedCondition}, Probabilities: []float64{0.5}}
		sess.DiagnosisForced = true
		reply = ""
		s.record(func(r Recorder) { r.ForcedDiagnosis() })
		s.logger.Warn("screening turn limit reached, forcing diagnosis", "session_id", sess.ID, "turns", sess.ScreeningTurns)
		if s.audit != nil {
			if err := s.audit.LogForcedDiagnosis(ctx, sess.ID, sess.PatientID, sess.ScreeningTurns); err != nil {
				s.logger.Warn("failed to audit forced diagnosis", "session_id", sess.ID, "error", err)
			}
		}
	}

	if diag == nil {
		sess.Append(session.RoleAssistant, reply, s.now())
		return MessageResponse{Reply: reply, Phase: sess.Phase}, nil
	}

	sess.DiagnosisCandidates = diag.Candidates()
	sess.Phase = session.PhaseScreeningComplete
	if id, ok := s.selector.Select(sess.DiagnosisCandidates); ok {
		sess.RecommendedQuestionnaireID = id
	}
	reply = s.conclusionReply(ctx, sess, reply)
	sess.Append(session.RoleAssistant, reply, s.now())

	s.logger.Info("screening complete",
		"session_id", sess.ID,
		"turns", sess.ScreeningTurns,
		"candidates", len(sess.DiagnosisCandidates),
		"recommended", sess.RecommendedQuestionnaireID,
		"forced", sess.DiagnosisForced,
	)
	return MessageResponse{
		Reply:                    reply,
		Phase:                    sess.Phase,
		Diagnosis:                sess.DiagnosisCandidates,
		RecommendedQuestionnaire: sess.RecommendedQuestionnaireID,
	}, nil
}

// searchCriteria appends a retrieval block while the per-session search budget lasts.
// Retrieval failures only cost this turn its reference material.
func (s *Service) searchCriteria(ctx context.Context, sess *session.Session) {
	if s.searcher == nil || sess.CriteriaSearches >= s.maxCriteriaSearches {
		return
	}
	snippets, err := s.searcher.Search(ctx, sess.ID, criteriaQuery(sess), s.criteriaTopK)
	if err != nil {
		s.record(func(r Recorder) { r.CriteriaSearch("error") })
		s.logger.Warn("criteria search failed", "session_id", sess.ID, "error", err)
		return
	}
	sess.CriteriaSearches++
	if len(snippets) == 0 {
		s.record(func(r Recorder) { r.CriteriaSearch("empty") })
		return
	}
	s.record(func(r Recorder) { r.CriteriaSearch("ok") })
	sess.CriteriaContext = append(sess.CriteriaContext, retrievalBlock(snippets))
}

// criteriaQuery combines the chief complaints with what the patient has said so far.
func criteriaQuery(sess *session.Session) string {
	parts := append([]string(nil), sess.Patient.ChiefComplaints...)
	for _, e := range sess.Transcript {
		if e.Role == session.RoleUser {
			parts = append(parts, e.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func (s *Service) conclusionReply(ctx context.Context, sess *session.Session, prose string) string {
	var b strings.Builder
	if prose != "" {
		b.WriteString(prose)
		b.WriteString("\n\n")
	}
	b.WriteString("Thank you for sharing all of this with me. I have enough information to complete the screening.")
	if def, err := s.registry.Get(sess.RecommendedQuestionnaireID); err == nil {
		fmt.Fprintf(&b, " As a next step, I recommend the %s questionnaire (%d items). It will help measure your symptoms more precisely.",
			def.Name, def.ItemCount())
	}
	reply := b.String()
	if s.notice != nil {
		out, err := s.notice.AddDisclaimer(ctx, reply, compliance.DisclaimerOptions{SessionID: sess.ID, PatientID: sess.PatientID})
		if err != nil {
			s.logger.Warn("failed to audit disclaimer", "session_id", sess.ID, "error", err)
		}
		reply = out
	}
	return reply
}

func (s *Service) supportTurn(ctx context.Context, sess *session.Session, text string) (MessageResponse, error) {
	sess.Append(session.RoleUser, text, s.now())
	out, err := s.llm.Complete(ctx, s.request(
		[]string{supportSystemPrompt(sess, s.registry)},
		transcriptMessages(sess.Transcript),
	))
	if err != nil {
		return MessageResponse{}, err
	}
	reply := visibleReply(out.Text, extractDiagnosis(out.Text))
	if reply == "" {
		reply = "I'm here with you. Let's continue when you're ready."
	}
	sess.Append(session.RoleAssistant, reply, s.now())
	return MessageResponse{
		Reply:                    reply,
		Phase:                    sess.Phase,
		Diagnosis:                sess.DiagnosisCandidates,
		RecommendedQuestionnaire: sess.RecommendedQuestionnaireID,
	}, nil
}

// StartAssessment begins a questionnaire. An empty id selects the recommended questionnaire;
// choosing a different one is allowed and audited.
func (s *Service) StartAssessment(ctx context.Context, sessionID, questionnaireID string) (AssessmentItem, error) {
	ctx, span := tracer.Start(ctx, "screening.start_assessment")
	defer span.End()

	var item AssessmentItem
	err := s.withSession(ctx, sessionID, func(sess *session.Session) error {
		if sess.Phase != session.PhaseScreeningComplete {
			return fmt.Errorf("%w: cannot start assessment in %s", ErrInvalidPhase, sess.Phase)
		}
		id := questionnaireID
		if strings.TrimSpace(id) == "" {
			id = sess.RecommendedQuestionnaireID
		}
		def, err := s.registry.Get(id)
		if err != nil {
			return err
		}

		if sess.RecommendedQuestionnaireID != "" && def.ID != sess.RecommendedQuestionnaireID {
			s.logger.Info("questionnaire override",
				"session_id", sess.ID, "recommended", sess.RecommendedQuestionnaireID, "chosen", def.ID)
			if s.audit != nil {
				if err := s.audit.LogQuestionnaireOverride(ctx, sess.ID, sess.PatientID, sess.RecommendedQuestionnaireID, def.ID); err != nil {
					s.logger.Warn("failed to audit questionnaire override", "session_id", sess.ID, "error", err)
				}
			}
		}

		sess.Phase = session.PhaseAssessment
		sess.ActiveQuestionnaireID = def.ID
		sess.AnswerCursor = 0
		sess.CollectedAnswers = []int{}
		item = itemFor(def, 0)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return AssessmentItem{}, err
	}
	return item, nil
}

// SubmitAnswer records the next answer. The final answer scores the questionnaire and moves
// the session to AssessmentComplete in the same call.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID string, value int) (AnswerResponse, error) {
	ctx, span := tracer.Start(ctx, "screening.submit_answer")
	defer span.End()

	var resp AnswerResponse
	err := s.withSession(ctx, sessionID, func(sess *session.Session) error {
		if sess.Phase != session.PhaseAssessment {
			return fmt.Errorf("%w: cannot submit answers in %s", ErrInvalidPhase, sess.Phase)
		}
		def, err := s.registry.Get(sess.ActiveQuestionnaireID)
		if err != nil {
			return err
		}
		if sess.AnswerCursor != len(sess.CollectedAnswers) || sess.AnswerCursor >= def.ItemCount() {
			return fmt.Errorf("screening: session %s has inconsistent answer state (cursor %d, answers %d)",
				sess.ID, sess.AnswerCursor, len(sess.CollectedAnswers))
		}
		if err := def.ValidateResponse(value); err != nil {
			return err
		}

		sess.CollectedAnswers = append(sess.CollectedAnswers, value)
		sess.AnswerCursor = len(sess.CollectedAnswers)
		s.record(func(r Recorder) { r.AnswerRecorded(def.ID) })

		if sess.AnswerCursor < def.ItemCount() {
			next := itemFor(def, sess.AnswerCursor)
			resp = AnswerResponse{Next: &next, Phase: sess.Phase}
			return nil
		}

		result, err := questionnaire.Score(def, sess.CollectedAnswers)
		if err != nil {
			return err
		}
		if sess.QuestionnaireResults == nil {
			sess.QuestionnaireResults = make(map[string]questionnaire.ScoreResult)
		}
		sess.QuestionnaireResults[def.ID] = result
		sess.Phase = session.PhaseAssessmentComplete
		s.logger.Info("questionnaire complete", "session_id", sess.ID, "questionnaire", def.ID, "total", result.Total)

		if result.Flags[questionnaire.FlagSuicideRisk] {
			s.logger.Warn("suicide risk flag raised", "session_id", sess.ID, "questionnaire", def.ID)
			if s.audit != nil {
				if err := s.audit.LogSuicideRisk(ctx, sess.ID, sess.PatientID, def.ID); err != nil {
					s.logger.Warn("failed to audit suicide risk", "session_id", sess.ID, "error", err)
				}
			}
		}
		resp = AnswerResponse{Results: &result, Phase: sess.Phase}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return AnswerResponse{}, err
	}
	return resp, nil
}

// GenerateReport builds and persists the report. It is safe to retry: a session stuck in
// ReportReady only repeats persistence, and a Complete session returns its stored report.
func (s *Service) GenerateReport(ctx context.Context, sessionID string) (*reports.Report, error) {
	ctx, span := tracer.Start(ctx, "screening.generate_report")
	defer span.End()

	var out *reports.Report
	err := s.withCheckpoints(ctx, sessionID, func(sess *session.Session, checkpoint func() error) error {
		switch sess.Phase {
		case session.PhaseComplete:
			out = sess.Report.Clone()
			return nil
		case session.PhaseAssessmentComplete:
			report, err := s.buildReport(ctx, sess)
			if err != nil {
				return err
			}
			sess.Report = report
			sess.Phase = session.PhaseReportReady
			if err := checkpoint(); err != nil {
				return err
			}
		case session.PhaseReportReady:
		default:
			return fmt.Errorf("%w: cannot generate report in %s", ErrInvalidPhase, sess.Phase)
		}

		if s.reports == nil {
			return errors.New("screening: no report store configured")
		}
		reportID, err := s.reports.StoreReport(ctx, sess.PatientID, sess.Report)
		if err != nil {
			s.record(func(r Recorder) { r.ReportStored("error") })
			return fmt.Errorf("screening: store report: %w", err)
		}
		s.record(func(r Recorder) { r.ReportStored("ok") })
		sess.Report.ID = reportID
		sess.ReportID = reportID
		sess.Phase = session.PhaseComplete
		if s.audit != nil {
			if err := s.audit.LogReportStored(ctx, sess.ID, sess.PatientID, reportID); err != nil {
				s.logger.Warn("failed to audit stored report", "session_id", sess.ID, "error", err)
			}
		}
		out = sess.Report.Clone()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// GetStatus returns a snapshot without taking the session lock.
func (s *Service) GetStatus(ctx context.Context, sessionID string) (Status, error) {
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		SessionID:                sess.ID,
		Phase:                    sess.Phase,
		ActiveQuestionnaire:      sess.ActiveQuestionnaireID,
		RecommendedQuestionnaire: sess.RecommendedQuestionnaireID,
		Diagnosis:                sess.DiagnosisCandidates,
		Results:                  sess.QuestionnaireResults,
		ReportID:                 sess.ReportID,
		ScreeningTurns:           sess.ScreeningTurns,
	}
	st.Progress.Answered = len(sess.CollectedAnswers)
	if def, err := s.registry.Get(sess.ActiveQuestionnaireID); err == nil {
		st.Progress.Total = def.ItemCount()
	}
	return st, nil
}

// ListQuestionnaires returns the catalog for presentation.
func (s *Service) ListQuestionnaires() []questionnaire.Summary {
	return s.registry.List()
}

// withSession runs fn on a private copy of the session under the session lock and saves
// the copy only when fn succeeds.
func (s *Service) withSession(ctx context.Context, sessionID string, fn func(*session.Session) error) error {
	return s.withCheckpoints(ctx, sessionID, func(sess *session.Session, _ func() error) error {
		return fn(sess)
	})
}

// withCheckpoints is withSession for transitions that persist an intermediate phase.
// checkpoint saves the copy and makes its phase the baseline for the final save.
func (s *Service) withCheckpoints(ctx context.Context, sessionID string, fn func(sess *session.Session, checkpoint func() error) error) error {
	release, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("screening: waiting for session %s: %w", sessionID, err)
	}
	defer release()

	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	before := sess.Phase
	checkpoint := func() error {
		if err := s.save(ctx, sess, before); err != nil {
			return err
		}
		before = sess.Phase
		return nil
	}
	if err := fn(sess, checkpoint); err != nil {
		return err
	}
	return s.save(ctx, sess, before)
}

func (s *Service) save(ctx context.Context, sess *session.Session, before session.Phase) error {
	if before != sess.Phase && !before.CanAdvanceTo(sess.Phase) {
		return fmt.Errorf("screening: illegal transition %s -> %s", before, sess.Phase)
	}
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("screening: save session %s: %w", sess.ID, err)
	}
	if before != sess.Phase {
		s.record(func(r Recorder) { r.PhaseTransition(string(before), string(sess.Phase)) })
	}
	return nil
}

func (s *Service) request(system []string, messages []llm.Message) llm.Request {
	return llm.Request{
		Model:       s.model,
		System:      system,
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}
}

func (s *Service) record(fn func(Recorder)) {
	if s.recorder != nil {
		fn(s.recorder)
	}
}

func transcriptMessages(entries []session.Entry) []llm.Message {
	out := make([]llm.Message, 0, len(entries))
	for _, e := range entries {
		role := llm.RoleUser
		if e.Role == session.RoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: e.Text})
	}
	return out
}

func itemFor(def questionnaire.Definition, index int) AssessmentItem {
	return AssessmentItem{
		QuestionnaireID: def.ID,
		Index:           index,
		Total:           def.ItemCount(),
		Prompt:          fmt.Sprintf("Question %d/%d: %s", index+1, def.ItemCount(), def.Items[index]),
		Options:         def.Options,
	}
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
