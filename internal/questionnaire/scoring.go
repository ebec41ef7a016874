package questionnaire

import "fmt"

// Score computes subscale or single-scale results for a complete set of responses.
func Score(def Definition, responses []int) (ScoreResult, error) {
	if len(responses) != len(def.Items) {
		return ScoreResult{}, fmt.Errorf("%w: %s expects %d, got %d", ErrInvalidResponseCount, def.ID, len(def.Items), len(responses))
	}
	for i, value := range responses {
		if err := def.ValidateResponse(value); err != nil {
			return ScoreResult{}, fmt.Errorf("item %d: %w", i, err)
		}
	}

	result := ScoreResult{QuestionnaireID: def.ID}
	if len(def.Scoring.Subscales) > 0 {
		result.Subscales = make(map[string]ScaleScore, len(def.Scoring.Subscales))
		for _, sub := range def.Scoring.Subscales {
			raw := 0
			for _, idx := range sub.Items {
				raw += responses[idx]
			}
			multiplier := sub.Multiplier
			if multiplier == 0 {
				multiplier = 1
			}
			raw *= multiplier
			result.Subscales[sub.Name] = ScaleScore{Score: raw, Severity: severityFor(sub.Bands, raw)}
			result.Total += raw
		}
	} else {
		for _, value := range responses {
			result.Total += value
		}
		result.Severity = severityFor(def.Scoring.Bands, result.Total)
	}

	if flag := def.Scoring.Flag; flag != nil && flag.Item < len(responses) {
		result.Flags = map[string]bool{flag.Name: responses[flag.Item] > 0}
	}
	return result, nil
}

func severityFor(bands []Band, score int) string {
	for _, band := range bands {
		if band.Min <= score && score <= band.Max {
			return band.Label
		}
	}
	return SeverityUnknown
}
