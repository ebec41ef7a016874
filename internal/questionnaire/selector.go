package questionnaire

import "strings"

// Candidate is one condition proposed by screening.
type Candidate struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
}

// Rule maps a case-insensitive condition substring to a questionnaire.
type Rule struct {
	Keyword         string
	QuestionnaireID string
}

// Selector picks one questionnaire for a set of candidates. Tiers are evaluated in order
// across every candidate, so an earlier tier wins even when it matches a later candidate.
type Selector struct {
	tiers    [][]Rule
	fallback string
}

// NewSelector builds a selector from ordered rule tiers and a fallback id used when
// candidates are present but nothing matches.
func NewSelector(fallback string, tiers ...[]Rule) *Selector {
	copied := make([][]Rule, len(tiers))
	for i, tier := range tiers {
		copied[i] = make([]Rule, len(tier))
		for j, rule := range tier {
			copied[i][j] = Rule{Keyword: strings.ToLower(rule.Keyword), QuestionnaireID: rule.QuestionnaireID}
		}
	}
	return &Selector{tiers: copied, fallback: fallback}
}

// DefaultSelector checks trauma conditions before mood and anxiety conditions and falls
// back to DASS-21.
func DefaultSelector() *Selector {
	trauma := []Rule{
		{Keyword: "posttraumatic", QuestionnaireID: PCL5},
		{Keyword: "post-traumatic", QuestionnaireID: PCL5},
		{Keyword: "ptsd", QuestionnaireID: PCL5},
		{Keyword: "acute stress", QuestionnaireID: PCL5},
		{Keyword: "trauma", QuestionnaireID: PCL5},
	}
	moodAnxiety := []Rule{
		{Keyword: "depressive", QuestionnaireID: DASS21},
		{Keyword: "depression", QuestionnaireID: DASS21},
		{Keyword: "dysthymi", QuestionnaireID: DASS21},
		{Keyword: "anxiety", QuestionnaireID: DASS21},
		{Keyword: "panic", QuestionnaireID: DASS21},
	}
	return NewSelector(DASS21, trauma, moodAnxiety)
}

// Select returns the recommended questionnaire, or false when there are no candidates.
func (s *Selector) Select(candidates []Candidate) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	for _, tier := range s.tiers {
		for _, candidate := range candidates {
			condition := strings.ToLower(candidate.Condition)
			for _, rule := range tier {
				if rule.Keyword != "" && strings.Contains(condition, rule.Keyword) {
					return rule.QuestionnaireID, true
				}
			}
		}
	}
	if s.fallback == "" {
		return "", false
	}
	return s.fallback, true
}
