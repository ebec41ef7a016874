package screening

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/mindscreen/internal/http/middleware"
	"github.com/wolfman30/mindscreen/internal/llm"
	"github.com/wolfman30/mindscreen/internal/questionnaire"
	"github.com/wolfman30/mindscreen/internal/reports"
	"github.com/wolfman30/mindscreen/internal/session"
	"github.com/wolfman30/mindscreen/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Handler exposes the screening service to authenticated patients.
type Handler struct {
	svc     *Service
	reports reports.Store
	logger  *logging.Logger
}

func NewHandler(svc *Service, reportStore reports.Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, reports: reportStore, logger: logger}
}

// Routes registers the patient endpoints. The router must already run PatientJWT.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/questionnaires", h.ListQuestionnaires)
	r.Post("/sessions", h.StartSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Use(h.requireOwner)
		r.Get("/", h.GetStatus)
		r.Post("/messages", h.SendMessage)
		r.Post("/assessment", h.StartAssessment)
		r.Post("/answers", h.SubmitAnswer)
		r.Post("/report", h.GenerateReport)
	})
	r.Get("/reports", h.ListReports)
	r.Get("/reports/{reportID}", h.GetReport)
}

type startSessionRequest struct {
	Patient         session.Patient `json:"patient_info"`
	ChiefComplaints []string        `json:"chief_complaints"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type assessmentRequest struct {
	QuestionnaireID string `json:"questionnaire_id"`
}

type answerRequest struct {
	Value *int `json:"value"`
}

// StartSession handles POST /sessions.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.PatientIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req startSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	resp, err := h.svc.StartSession(r.Context(), StartRequest{
		PatientID:       patientID,
		Patient:         req.Patient,
		ChiefComplaints: req.ChiefComplaints,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// SendMessage handles POST /sessions/{sessionID}/messages.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := h.svc.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), req.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// StartAssessment handles POST /sessions/{sessionID}/assessment. An empty body starts the
// recommended questionnaire.
func (h *Handler) StartAssessment(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	item, err := h.svc.StartAssessment(r.Context(), chi.URLParam(r, "sessionID"), req.QuestionnaireID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// SubmitAnswer handles POST /sessions/{sessionID}/answers.
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	resp, err := h.svc.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), *req.Value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GenerateReport handles POST /sessions/{sessionID}/report.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GenerateReport(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

// GetStatus handles GET /sessions/{sessionID}.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetStatus(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ListQuestionnaires handles GET /questionnaires.
func (h *Handler) ListQuestionnaires(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"questionnaires": h.svc.ListQuestionnaires()})
}

// ListReports handles GET /reports?limit=N for the authenticated patient.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.PatientIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	list, err := h.reports.ListReports(r.Context(), patientID, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if list == nil {
		list = []*reports.Report{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}

// GetReport handles GET /reports/{reportID}. ?format=markdown|html renders the report.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.PatientIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	report, err := h.reports.GetReport(r.Context(), patientID, chi.URLParam(r, "reportID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

func (h *Handler) writeReport(w http.ResponseWriter, r *http.Request, status int, report *reports.Report) {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reports.RenderMarkdown(report)))
	case "html":
		page, err := reports.RenderHTML(report)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(page))
	default:
		writeJSON(w, status, report)
	}
}

// requireOwner hides sessions that belong to another patient behind a 404.
func (h *Handler) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		patientID, ok := middleware.PatientIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := h.svc.CheckOwner(r.Context(), chi.URLParam(r, "sessionID"), patientID); err != nil {
			h.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("screening request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, msg)
}

// statusFor maps service errors onto HTTP responses. Model failures ask the patient to retry.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, reports.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, ErrInvalidPhase):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrEmptyMessage),
		errors.Is(err, questionnaire.ErrUnknownQuestionnaire),
		errors.Is(err, questionnaire.ErrInvalidResponseValue),
		errors.Is(err, questionnaire.ErrInvalidResponseCount):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, llm.ErrLLMTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "the assistant is busy, please try again"
	case errors.Is(err, llm.ErrLLMCallFailed):
		return http.StatusBadGateway, "the assistant could not respond, please try again"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
