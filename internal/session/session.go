// Package session defines the screening session record and its persistence backends.
package session

import (
	"time"

	"github.com/wolfman30/mindscreen/internal/questionnaire"
	"github.com/wolfman30/mindscreen/internal/reports"
)

// Phase is the position of a session in the screening pipeline.
type Phase string

const (
	PhaseScreening          Phase = "Screening"
	PhaseScreeningComplete  Phase = "ScreeningComplete"
	PhaseAssessment         Phase = "Assessment"
	PhaseAssessmentComplete Phase = "AssessmentComplete"
	PhaseReportReady        Phase = "ReportReady"
	PhaseComplete           Phase = "Complete"
)

var phaseOrder = map[Phase]int{
	PhaseScreening:          0,
	PhaseScreeningComplete:  1,
	PhaseAssessment:         2,
	PhaseAssessmentComplete: 3,
	PhaseReportReady:        4,
	PhaseComplete:           5,
}

// Rank returns the position of p in the pipeline, or -1 for an unknown phase.
func (p Phase) Rank() int {
	if r, ok := phaseOrder[p]; ok {
		return r
	}
	return -1
}

// CanAdvanceTo reports whether moving from p to next keeps phases monotonic.
// Screening is the only phase that may repeat.
func (p Phase) CanAdvanceTo(next Phase) bool {
	if p == PhaseScreening && next == PhaseScreening {
		return true
	}
	from, to := p.Rank(), next.Rank()
	return from >= 0 && to > from
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Patient is the snapshot captured when the session starts.
type Patient struct {
	Name            string   `json:"name"`
	Age             int      `json:"age,omitempty"`
	Gender          string   `json:"gender,omitempty"`
	ChiefComplaints []string `json:"chief_complaints,omitempty"`
}

type Entry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one patient's screening-to-report interaction.
type Session struct {
	ID         string  `json:"session_id"`
	PatientID  string  `json:"patient_id"`
	Phase      Phase   `json:"phase"`
	Patient    Patient `json:"patient_info"`
	Transcript []Entry `json:"transcript"`

	// CriteriaContext holds retrieval blocks replayed to the model as system context.
	CriteriaContext  []string `json:"criteria_context,omitempty"`
	ScreeningTurns   int      `json:"screening_turns"`
	CriteriaSearches int      `json:"criteria_searches"`

	DiagnosisCandidates        []questionnaire.Candidate `json:"diagnosis_candidates,omitempty"`
	DiagnosisForced            bool                      `json:"diagnosis_forced,omitempty"`
	RecommendedQuestionnaireID string                    `json:"recommended_questionnaire_id,omitempty"`

	ActiveQuestionnaireID string `json:"active_questionnaire_id,omitempty"`
	AnswerCursor          int    `json:"answer_cursor"`
	CollectedAnswers      []int  `json:"collected_answers,omitempty"`

	QuestionnaireResults map[string]questionnaire.ScoreResult `json:"questionnaire_results,omitempty"`

	Report   *reports.Report `json:"report,omitempty"`
	ReportID string          `json:"report_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Append adds a transcript entry.
func (s *Session) Append(role, text string, at time.Time) {
	s.Transcript = append(s.Transcript, Entry{Role: role, Text: text, Timestamp: at})
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Patient.ChiefComplaints = append([]string(nil), s.Patient.ChiefComplaints...)
	out.Transcript = append([]Entry(nil), s.Transcript...)
	out.CriteriaContext = append([]string(nil), s.CriteriaContext...)
	out.DiagnosisCandidates = append([]questionnaire.Candidate(nil), s.DiagnosisCandidates...)
	out.CollectedAnswers = append([]int(nil), s.CollectedAnswers...)
	if s.QuestionnaireResults != nil {
		out.QuestionnaireResults = make(map[string]questionnaire.ScoreResult, len(s.QuestionnaireResults))
		for id, res := range s.QuestionnaireResults {
			out.QuestionnaireResults[id] = cloneScore(res)
		}
	}
	out.Report = s.Report.Clone()
	return &out
}

func cloneScore(res questionnaire.ScoreResult) questionnaire.ScoreResult {
	out := res
	if res.Subscales != nil {
		out.Subscales = make(map[string]questionnaire.ScaleScore, len(res.Subscales))
		for k, v := range res.Subscales {
			out.Subscales[k] = v
		}
	}
	if res.Flags != nil {
		out.Flags = make(map[string]bool, len(res.Flags))
		for k, v := range res.Flags {
			out.Flags[k] = v
		}
	}
	return out
}
