package screening

import (
	"encoding/json"
	"strings"

	"github.com/wolfman30/mindscreen/internal/questionnaire"
)

const unspecifiedCondition = "Unspecified"

// Diagnosis is the structured screening conclusion embedded in a model reply.
type Diagnosis struct {
	Result        []string  `json:"result"`
	Probabilities []float64 `json:"probabilities"`
}

// Candidates pairs each condition with its probability. Conditions beyond the end of the
// probability list reuse the last probability.
func (d *Diagnosis) Candidates() []questionnaire.Candidate {
	if d == nil {
		return nil
	}
	out := make([]questionnaire.Candidate, 0, len(d.Result))
	for i, cond := range d.Result {
		p := 1.0
		switch {
		case i < len(d.Probabilities):
			p = d.Probabilities[i]
		case len(d.Probabilities) > 0:
			p = d.Probabilities[len(d.Probabilities)-1]
		}
		out = append(out, questionnaire.Candidate{Condition: cond, Confidence: p})
	}
	return out
}

// ExtractDiagnosis finds a diagnosis JSON object inside free-form model output.
// It returns nil when the text contains no parseable JSON object.
func ExtractDiagnosis(text string) *Diagnosis {
	m := extractDiagnosis(text)
	if m == nil {
		return nil
	}
	return m.diagnosis
}

type diagnosisMatch struct {
	diagnosis  *Diagnosis
	start, end int
	err        error
}

// extractDiagnosis scans every '{' for a decodable object, preferring the first one that
// carries a result or probabilities key over any other object.
func extractDiagnosis(text string) *diagnosisMatch {
	var fallback *diagnosisMatch
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err != nil {
			continue
		}
		end := i + int(dec.InputOffset())
		_, hasResult := obj["result"]
		_, hasProbs := obj["probabilities"]
		if hasResult || hasProbs {
			diag, err := decodeDiagnosis(obj)
			return &diagnosisMatch{diagnosis: diag, start: i, end: end, err: err}
		}
		if fallback == nil {
			diag, err := decodeDiagnosis(obj)
			fallback = &diagnosisMatch{diagnosis: diag, start: i, end: end, err: err}
		}
	}
	return fallback
}

// decodeDiagnosis applies lenient defaults for missing or malformed keys and reports
// errExtractionAmbiguous when it had to.
func decodeDiagnosis(obj map[string]json.RawMessage) (*Diagnosis, error) {
	var ambiguous bool

	results, ok := decodeStrings(obj["result"])
	if !ok || len(results) == 0 {
		results = []string{unspecifiedCondition}
		ambiguous = true
	}
	probs, ok := decodeFloats(obj["probabilities"])
	if !ok || len(probs) == 0 {
		probs = []float64{1.0}
		ambiguous = true
	}
	for i, p := range probs {
		switch {
		case p < 0:
			probs[i] = 0
			ambiguous = true
		case p > 1:
			probs[i] = 1
			ambiguous = true
		}
	}

	diag := &Diagnosis{Result: results, Probabilities: probs}
	if ambiguous {
		return diag, errExtractionAmbiguous
	}
	return diag, nil
}

func decodeStrings(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, false
		}
		list = []string{single}
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

func decodeFloats(raw json.RawMessage) ([]float64, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var list []float64
	if err := json.Unmarshal(raw, &list); err != nil {
		var single float64
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, false
		}
		list = []float64{single}
	}
	return list, true
}

// visibleReply removes the matched JSON object and any code fence or speaker prefix
// around it, leaving the prose meant for the patient.
func visibleReply(text string, m *diagnosisMatch) string {
	if m != nil {
		text = text[:m.start] + text[m.end:]
	}
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "Dr. Mind:")
	return strings.TrimSpace(text)
}
