// Package questionnaire holds the standardized psychometric instruments, their scoring rules
// and the mapping from screening conclusions to a recommended instrument.
package questionnaire

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownQuestionnaire is returned when an id is not in the registry.
	ErrUnknownQuestionnaire = errors.New("questionnaire: unknown questionnaire")
	// ErrInvalidResponseValue is returned when an answer lies outside the declared range.
	ErrInvalidResponseValue = errors.New("questionnaire: response value out of range")
	// ErrInvalidResponseCount is returned when the number of answers differs from the item count.
	ErrInvalidResponseCount = errors.New("questionnaire: wrong number of responses")
)

// SeverityUnknown is reported when no band covers a score. It indicates a catalog defect.
const SeverityUnknown = "Unknown"

// Option is one selectable answer for every item of a questionnaire.
type Option struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

// Band is a closed score range mapped to a severity label.
type Band struct {
	Label string
	Min   int
	Max   int
}

// Subscale sums a fixed subset of items and scales the result.
type Subscale struct {
	Name       string
	Items      []int
	Multiplier int
	Bands      []Band
}

// Flag marks an elevated-risk indicator raised when one item is answered above zero.
type Flag struct {
	Name string
	Item int
}

// Scoring binds a definition to either subscale scoring or single-scale scoring.
type Scoring struct {
	Subscales []Subscale
	Bands     []Band
	Flag      *Flag
}

// Definition is an immutable questionnaire.
type Definition struct {
	ID          string
	Name        string
	Description string
	Items       []string
	Options     []Option
	MinValue    int
	MaxValue    int
	Scoring     Scoring
}

// ItemCount returns the number of items.
func (d Definition) ItemCount() int {
	return len(d.Items)
}

// Summary is the caller-facing view of a definition, without the scoring binding.
type Summary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ItemCount   int      `json:"item_count"`
	Options     []Option `json:"options"`
	MinValue    int      `json:"min_value"`
	MaxValue    int      `json:"max_value"`
}

// Summary returns the presentation view of the definition.
func (d Definition) Summary() Summary {
	return Summary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ItemCount:   len(d.Items),
		Options:     append([]Option(nil), d.Options...),
		MinValue:    d.MinValue,
		MaxValue:    d.MaxValue,
	}
}

// ValidateResponse checks a single answer against the declared range.
func (d Definition) ValidateResponse(value int) error {
	if value < d.MinValue || value > d.MaxValue {
		return fmt.Errorf("%w: %s accepts %d-%d, got %d", ErrInvalidResponseValue, d.ID, d.MinValue, d.MaxValue, value)
	}
	return nil
}

func (d Definition) clone() Definition {
	out := d
	out.Items = append([]string(nil), d.Items...)
	out.Options = append([]Option(nil), d.Options...)
	out.Scoring.Bands = append([]Band(nil), d.Scoring.Bands...)
	if d.Scoring.Flag != nil {
		flag := *d.Scoring.Flag
		out.Scoring.Flag = &flag
	}
	if d.Scoring.Subscales != nil {
		out.Scoring.Subscales = make([]Subscale, len(d.Scoring.Subscales))
		for i, sub := range d.Scoring.Subscales {
			sub.Items = append([]int(nil), sub.Items...)
			sub.Bands = append([]Band(nil), sub.Bands...)
			out.Scoring.Subscales[i] = sub
		}
	}
	return out
}

// ScaleScore is a raw score with its severity label.
type ScaleScore struct {
	Score    int    `json:"score"`
	Severity string `json:"severity"`
}

// ScoreResult is the outcome of scoring a completed questionnaire. Multi-subscale
// instruments fill Subscales and report their sum in Total; single-scale instruments
// fill Total and Severity.
type ScoreResult struct {
	QuestionnaireID string                `json:"questionnaire_id"`
	Subscales       map[string]ScaleScore `json:"subscales,omitempty"`
	Total           int                   `json:"total"`
	Severity        string                `json:"severity,omitempty"`
	Flags           map[string]bool       `json:"flags,omitempty"`
}

// Describe renders the result as one line per scale, in a stable order.
func (r ScoreResult) Describe() string {
	var b strings.Builder
	if len(r.Subscales) > 0 {
		names := make([]string, 0, len(r.Subscales))
		for name := range r.Subscales {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s := r.Subscales[name]
			fmt.Fprintf(&b, "%s: %d (%s)\n", name, s.Score, s.Severity)
		}
		fmt.Fprintf(&b, "total: %d\n", r.Total)
	} else {
		fmt.Fprintf(&b, "score: %d (%s)\n", r.Total, r.Severity)
	}
	flagNames := make([]string, 0, len(r.Flags))
	for name := range r.Flags {
		flagNames = append(flagNames, name)
	}
	sort.Strings(flagNames)
	for _, name := range flagNames {
		fmt.Fprintf(&b, "%s: %t\n", name, r.Flags[name])
	}
	return strings.TrimSpace(b.String())
}
