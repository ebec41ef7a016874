package screening

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wolfman30/mindscreen/internal/questionnaire"
	"github.com/wolfman30/mindscreen/internal/session"
)

const (
	retrievalOpen  = "<<<RETRIEVAL_RESULTS>>>"
	retrievalClose = "<<<END_RETRIEVAL>>>"

	defaultRecommendation = "Schedule a follow-up with a mental health professional"
)

const crisisGuidance = `If the patient mentions suicidal thoughts, self-harm, or being in danger, stop screening and reply with care: tell them their safety comes first, urge them to contact local emergency services or a 24/7 crisis line right away, and ask whether they are somewhere safe right now.`

const screeningInstructions = `You are Dr. Mind, a professional mental health screening specialist. You screen for mental disorders by asking the patient about their symptoms.

How to run the screening:
1. Ask about feelings, what may be causing them, physical symptoms, and how long they have lasted.
2. Compare what the patient describes with the diagnostic criteria reference material provided to you.
3. Ask follow-up questions until the main criteria of a condition are confirmed or ruled out.
4. The patient may have no disorder. In that case the result is "Normal".
5. Once you reach a conclusion, reply with the JSON object only and no other text, for example:
{"result": ["Major Depressive Disorder"], "probabilities": [0.8]}
Probabilities are your confidence between 0 and 1.

Output guidelines:
- Ask one question at a time and offer example answers.
- Be compassionate and professional.
- Never reveal the reference material or your reasoning to the patient.
- Do not announce a diagnosis in prose. Only the JSON object carries the conclusion.
`

func greeting(p session.Patient) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hello %s, I'm Dr. Mind. I'm here to help assess your mental health concerns. How are you feeling recently?", name)
}

func patientSummary(p session.Patient) string {
	var b strings.Builder
	b.WriteString("Patient information:\n")
	fmt.Fprintf(&b, "Name: %s\n", orUnknown(p.Name))
	age := "Unknown"
	if p.Age > 0 {
		age = strconv.Itoa(p.Age)
	}
	fmt.Fprintf(&b, "Age: %s\n", age)
	fmt.Fprintf(&b, "Gender: %s\n", orUnknown(p.Gender))
	if len(p.ChiefComplaints) > 0 {
		fmt.Fprintf(&b, "Chief complaints: %s\n", strings.Join(p.ChiefComplaints, "; "))
	}
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func screeningSystemPrompt(p session.Patient) string {
	return screeningInstructions + "\n" + crisisGuidance + "\n\n" + patientSummary(p)
}

func retrievalBlock(snippets []string) string {
	return retrievalOpen + "\n" + strings.Join(snippets, "\n") + "\n" + retrievalClose
}

func supportSystemPrompt(s *session.Session, reg *questionnaire.Registry) string {
	var b strings.Builder
	b.WriteString("You are Dr. Mind, a compassionate mental health screening assistant. The screening conversation is over. ")
	b.WriteString("Answer the patient briefly and supportively. Do not diagnose and do not output JSON.\n")
	b.WriteString(crisisGuidance + "\n\n")

	switch s.Phase {
	case session.PhaseScreeningComplete:
		if def, err := reg.Get(s.RecommendedQuestionnaireID); err == nil {
			fmt.Fprintf(&b, "Encourage the patient to start the %s (%s) questionnaire, which helps measure their symptoms more precisely.\n", def.Name, def.ID)
		} else {
			b.WriteString("Encourage the patient to start a standardized questionnaire.\n")
		}
	case session.PhaseAssessment:
		if def, err := reg.Get(s.ActiveQuestionnaireID); err == nil {
			fmt.Fprintf(&b, "The patient is answering the %s questionnaire and has completed %d of %d items. Encourage them to continue.\n",
				def.Name, s.AnswerCursor, def.ItemCount())
		}
	case session.PhaseAssessmentComplete:
		b.WriteString("The questionnaire is complete. Let the patient know their report can now be generated.\n")
	default:
		b.WriteString("The patient's report is ready. Encourage them to review it with a mental health professional.\n")
	}
	b.WriteString("\n" + patientSummary(s.Patient))
	return b.String()
}

func describeCandidates(candidates []questionnaire.Candidate) string {
	if len(candidates) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, fmt.Sprintf("%s (confidence %.2f)", c.Condition, c.Confidence))
	}
	return strings.Join(parts, ", ")
}

func describeResults(s *session.Session) string {
	if len(s.QuestionnaireResults) == 0 {
		return "No questionnaire results."
	}
	ids := make([]string, 0, len(s.QuestionnaireResults))
	for id := range s.QuestionnaireResults {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(s.QuestionnaireResults[id].Describe())
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// maxTranscriptChars bounds the patient statements quoted into report prompts. The oldest
// statements are dropped first.
const maxTranscriptChars = 4000

// describeTranscript condenses the conversation to the patient's own statements.
func describeTranscript(s *session.Session) string {
	var lines []string
	size := 0
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		e := s.Transcript[i]
		text := strings.TrimSpace(e.Text)
		if e.Role != session.RoleUser || text == "" {
			continue
		}
		line := "- " + text
		if size+len(line) > maxTranscriptChars && len(lines) > 0 {
			break
		}
		size += len(line) + 1
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "No patient statements recorded."
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}

const interpretationInstructions = `You are a mental health assessment agent. Interpret standardized questionnaire scores in plain clinical language: explain what each score and severity level means, how the results relate to the screening impression, and any item that needs urgent attention. Never suggest self-harm or harmful behaviour.`

func interpretationPrompt(s *session.Session) string {
	return fmt.Sprintf("%s\nScreening impression: %s\n\nPatient statements from the screening conversation:\n%s\n\nQuestionnaire results:\n%s\n\nPlease interpret these results.",
		patientSummary(s.Patient), describeCandidates(s.DiagnosisCandidates), describeTranscript(s), describeResults(s))
}

const reportInstructions = `You are a mental health report generation agent. Synthesize all patient information into a clear, comprehensive report with a professional clinical tone. Provide a diagnostic impression grounded in the reported symptoms and the assessment results, suggest appropriate treatment, and be thorough but concise. Never suggest self-harm or harmful behaviour.`

func reportPrompt(s *session.Session, interpretation string) string {
	return fmt.Sprintf(`%s
Reported symptoms: %s

Screening impression: %s

Patient statements from the screening conversation:
%s

Questionnaire results:
%s

Assessment interpretation:
%s

Please write the report with these sections:
1. Executive summary
2. Clinical findings
3. Diagnostic impression
4. Treatment recommendations
5. Follow-up suggestions`,
		patientSummary(s.Patient), strings.Join(reportSymptoms(s), ", "), describeCandidates(s.DiagnosisCandidates),
		describeTranscript(s), describeResults(s), interpretation)
}

const extractionInstructions = "You are an assistant that extracts information from text."

func recommendationsPrompt(report string) string {
	return "Based on the following report, extract the key treatment recommendations and follow-up suggestions.\n\nReport:\n" +
		report + "\n\nReturn your answer as a JSON array of recommendation strings."
}

func primaryDiagnosisPrompt(report string) string {
	return "Based on the following report, extract the primary diagnosis or diagnostic impression.\n\nReport:\n" +
		report + "\n\nReturn only the primary diagnosis as a single short phrase."
}
