package screening

import (
	"errors"

	"github.com/wolfman30/mindscreen/internal/llm"
)

var (
	// ErrInvalidPhase is returned when an operation is not valid for the session's current phase.
	ErrInvalidPhase = errors.New("screening: operation not available in current phase")
	// ErrEmptyMessage is returned for blank patient messages.
	ErrEmptyMessage = errors.New("screening: message is empty")

	// errExtractionAmbiguous marks a JSON object that needed lenient defaults. Never surfaced.
	errExtractionAmbiguous = errors.New("screening: diagnosis extraction ambiguous")
)

// IsRetryable reports whether the caller should resend the same request later.
func IsRetryable(err error) bool {
	return errors.Is(err, llm.ErrLLMTimeout) || errors.Is(err, llm.ErrLLMCallFailed)
}
