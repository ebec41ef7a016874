package compliance

import (
	"context"
	"fmt"
	"strings"
)

// DisclaimerLevel represents the verbosity of the disclaimer.
type DisclaimerLevel string

const (
	DisclaimerShort  DisclaimerLevel = "short"
	DisclaimerMedium DisclaimerLevel = "medium"
	DisclaimerFull   DisclaimerLevel = "full"
)

const (
	disclaimerShortText = "Screening result only. Not a diagnosis."

	disclaimerMediumText = "This is an automated screening, not a clinical diagnosis. Please discuss the results with a licensed mental health professional."

	disclaimerFullText = "This is an automated mental health screening. The results are preliminary and are not a substitute for assessment by a licensed clinician. If you are in crisis or thinking about harming yourself, contact your local emergency number or a crisis line immediately."
)

// DisclaimerConfig configures the disclaimer service.
type DisclaimerConfig struct {
	Level   DisclaimerLevel
	Enabled bool
	// CustomText overrides the default template.
	CustomText string
}

// DefaultDisclaimerConfig returns sensible defaults.
func DefaultDisclaimerConfig() DisclaimerConfig {
	return DisclaimerConfig{
		Level:   DisclaimerMedium,
		Enabled: true,
	}
}

// DisclaimerService attaches disclaimers to patient-facing screening output.
type DisclaimerService struct {
	audit  *AuditService
	config DisclaimerConfig
}

func NewDisclaimerService(audit *AuditService, config DisclaimerConfig) *DisclaimerService {
	return &DisclaimerService{
		audit:  audit,
		config: config,
	}
}

// GetDisclaimerText returns the appropriate disclaimer text.
func (s *DisclaimerService) GetDisclaimerText() string {
	if s.config.CustomText != "" {
		return s.config.CustomText
	}
	switch s.config.Level {
	case DisclaimerShort:
		return disclaimerShortText
	case DisclaimerFull:
		return disclaimerFullText
	default:
		return disclaimerMediumText
	}
}

// AddDisclaimer appends the disclaimer once and records it in the audit trail when possible.
func (s *DisclaimerService) AddDisclaimer(ctx context.Context, message string, opts DisclaimerOptions) (string, error) {
	if s == nil || !s.config.Enabled {
		return message, nil
	}

	disclaimer := s.GetDisclaimerText()
	if strings.Contains(message, disclaimer) {
		return message, nil
	}
	result := fmt.Sprintf("%s\n\n%s", strings.TrimSpace(message), disclaimer)

	if s.audit != nil && opts.SessionID != "" {
		if err := s.audit.LogDisclaimerSent(ctx, opts.SessionID, opts.PatientID, string(s.config.Level)); err != nil {
			return result, err
		}
	}
	return result, nil
}

// DisclaimerOptions provides context for disclaimer addition.
type DisclaimerOptions struct {
	SessionID string
	PatientID string
}
