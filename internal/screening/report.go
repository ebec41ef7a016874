package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/mindscreen/internal/compliance"
	"github.com/wolfman30/mindscreen/internal/llm"
	"github.com/wolfman30/mindscreen/internal/reports"
	"github.com/wolfman30/mindscreen/internal/session"
)

// buildReport runs the interpretation and report calls in order, then extracts the
// recommendations and the primary diagnosis from the report concurrently.
func (s *Service) buildReport(ctx context.Context, sess *session.Session) (*reports.Report, error) {
	ctx, span := tracer.Start(ctx, "screening.build_report")
	defer span.End()

	interpretation, err := s.ask(ctx, interpretationInstructions, interpretationPrompt(sess))
	if err != nil {
		return nil, fmt.Errorf("screening: interpret results: %w", err)
	}
	details, err := s.ask(ctx, reportInstructions, reportPrompt(sess, interpretation))
	if err != nil {
		return nil, fmt.Errorf("screening: write report: %w", err)
	}

	var (
		recommendations []string
		primary         string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := s.ask(gctx, extractionInstructions, recommendationsPrompt(details))
		if err != nil {
			return fmt.Errorf("screening: extract recommendations: %w", err)
		}
		recommendations = parseRecommendations(text)
		return nil
	})
	g.Go(func() error {
		text, err := s.ask(gctx, extractionInstructions, primaryDiagnosisPrompt(details))
		if err != nil {
			return fmt.Errorf("screening: extract primary diagnosis: %w", err)
		}
		primary = cleanPhrase(text)
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if primary == "" && len(sess.DiagnosisCandidates) > 0 {
		primary = sess.DiagnosisCandidates[0].Condition
	}
	if primary == "" {
		primary = unspecifiedCondition
	}
	if s.notice != nil {
		out, err := s.notice.AddDisclaimer(ctx, details, compliance.DisclaimerOptions{SessionID: sess.ID, PatientID: sess.PatientID})
		if err != nil {
			s.logger.Warn("failed to audit report disclaimer", "session_id", sess.ID, "error", err)
		}
		details = out
	}

	return &reports.Report{
		ID:              s.newID(),
		PatientID:       sess.PatientID,
		SessionID:       sess.ID,
		Diagnosis:       primary,
		Details:         details,
		Symptoms:        reportSymptoms(sess),
		Recommendations: recommendations,
		CreatedAt:       s.now(),
		LLMAnalysis:     interpretation,
	}, nil
}

func (s *Service) ask(ctx context.Context, system, prompt string) (string, error) {
	out, err := s.llm.Complete(ctx, s.request(
		[]string{system},
		[]llm.Message{{Role: llm.RoleUser, Content: prompt}},
	))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Text), nil
}

// reportSymptoms lists the chief complaints, or the screening conditions when none were given.
func reportSymptoms(sess *session.Session) []string {
	if len(sess.Patient.ChiefComplaints) > 0 {
		return append([]string(nil), sess.Patient.ChiefComplaints...)
	}
	out := make([]string, 0, len(sess.DiagnosisCandidates))
	for _, c := range sess.DiagnosisCandidates {
		out = append(out, c.Condition)
	}
	return out
}

// parseRecommendations accepts a JSON array of strings anywhere in the text, then falls back
// to one recommendation per list line.
func parseRecommendations(text string) []string {
	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			var items []string
			if err := json.Unmarshal([]byte(text[start:end+1]), &items); err == nil {
				if items = cleanList(items); len(items) > 0 {
					return items
				}
			}
		}
	}

	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		line = strings.TrimLeft(line, "-*• ")
		line = strings.TrimLeft(line, "0123456789")
		line = strings.TrimSpace(strings.TrimLeft(line, ".) "))
		if line != "" {
			items = append(items, line)
		}
	}
	if len(items) == 0 {
		return []string{defaultRecommendation}
	}
	return items
}

func cleanPhrase(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimPrefix(text, "Primary diagnosis:")
	return strings.Trim(strings.TrimSpace(text), `"'.*`)
}
