package reports

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
)

var markdown = goldmark.New()

// RenderMarkdown formats a report for reading.
func RenderMarkdown(r *Report) string {
	var b strings.Builder
	b.WriteString("# Mental Health Assessment Report\n\n")
	fmt.Fprintf(&b, "**Report ID:** %s  \n", r.ID)
	fmt.Fprintf(&b, "**Date:** %s\n\n", r.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))

	b.WriteString("## Diagnosis\n\n")
	b.WriteString(r.Diagnosis)
	b.WriteString("\n\n## Details\n\n")
	b.WriteString(strings.TrimSpace(r.Details))
	b.WriteString("\n\n## Symptoms\n\n")
	writeList(&b, r.Symptoms)
	b.WriteString("\n## Recommendations\n\n")
	writeList(&b, r.Recommendations)
	if analysis := strings.TrimSpace(r.LLMAnalysis); analysis != "" {
		b.WriteString("\n## Additional Analysis\n\n")
		b.WriteString(analysis)
		b.WriteString("\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("_None recorded._\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// RenderHTML converts the markdown rendering into a standalone page. Raw HTML in model output
// is dropped by the converter.
func RenderHTML(r *Report) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(RenderMarkdown(r)), &body); err != nil {
		return "", fmt.Errorf("reports: render html: %w", err)
	}
	return fmt.Sprintf("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Report %s</title></head><body>\n%s</body></html>\n",
		html.EscapeString(r.ID), body.String()), nil
}
