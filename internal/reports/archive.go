package reports

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/wolfman30/mindscreen/pkg/logging"
)

// S3API is the subset of the S3 client used by Archive.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?1?[-.\s]?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
)

// ManifestEntry is one line of the monthly archive manifest.
type ManifestEntry struct {
	ReportID    string `json:"report_id"`
	PatientHash string `json:"patient_hash"`
	JSONKey     string `json:"json_key"`
	HTMLKey     string `json:"html_key"`
	Diagnosis   string `json:"diagnosis"`
	ArchivedAt  string `json:"archived_at"`
}

// Archive writes a scrubbed copy of each report to S3 as JSON and HTML. Object keys carry a
// hash of the patient id, never the id itself.
type Archive struct {
	bucket string
	s3     S3API
	logger *logging.Logger
	now    func() time.Time
}

// NewArchive creates an archive. With an empty bucket every operation is a no-op.
func NewArchive(client S3API, bucket string, logger *logging.Logger) *Archive {
	if logger == nil {
		logger = logging.Default()
	}
	return &Archive{bucket: bucket, s3: client, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (a *Archive) Enabled() bool {
	return a != nil && a.bucket != "" && a.s3 != nil
}

// Put archives the report and appends it to the manifest. A manifest failure is logged only.
func (a *Archive) Put(ctx context.Context, report *Report) error {
	if !a.Enabled() {
		return nil
	}
	ctx, span := tracer.Start(ctx, "reports.archive")
	defer span.End()

	scrubbed := scrubReport(report)
	data, err := json.Marshal(scrubbed)
	if err != nil {
		return fmt.Errorf("reports: marshal archive copy: %w", err)
	}
	page, err := RenderHTML(scrubbed)
	if err != nil {
		return err
	}

	patientHash := HashPatientID(report.PatientID)
	at := report.CreatedAt
	if at.IsZero() {
		at = a.now()
	}
	prefix := fmt.Sprintf("reports/v1/%s/%d/%02d/%s", patientHash, at.Year(), at.Month(), report.ID)
	jsonKey, htmlKey := prefix+".json", prefix+".html"

	if err := a.putObject(ctx, jsonKey, "application/json", data); err != nil {
		span.RecordError(err)
		return err
	}
	if err := a.putObject(ctx, htmlKey, "text/html; charset=utf-8", []byte(page)); err != nil {
		span.RecordError(err)
		return err
	}
	a.logger.Info("archived report", "report_id", report.ID, "s3_key", jsonKey)

	entry := ManifestEntry{
		ReportID:    report.ID,
		PatientHash: patientHash,
		JSONKey:     jsonKey,
		HTMLKey:     htmlKey,
		Diagnosis:   report.Diagnosis,
		ArchivedAt:  a.now().Format(time.RFC3339),
	}
	if err := a.appendManifest(ctx, entry); err != nil {
		a.logger.Warn("failed to append report manifest", "report_id", report.ID, "error", err)
	}
	return nil
}

// appendManifest does a read-modify-write of the monthly JSONL manifest.
func (a *Archive) appendManifest(ctx context.Context, entry ManifestEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("reports: marshal manifest entry: %w", err)
	}
	now := a.now()
	key := fmt.Sprintf("reports/v1/manifests/%d-%02d.jsonl", now.Year(), now.Month())

	var existing []byte
	out, err := a.s3.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	switch {
	case err == nil:
		existing, err = io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return fmt.Errorf("reports: read manifest: %w", err)
		}
	case !isNoSuchKey(err):
		return fmt.Errorf("reports: get manifest: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(line)
	buf.WriteByte('\n')
	return a.putObject(ctx, key, "application/x-ndjson", buf.Bytes())
}

func (a *Archive) putObject(ctx context.Context, key, contentType string, body []byte) error {
	_, err := a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("reports: s3 put %s: %w", key, err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

// HashPatientID returns the hex SHA-256 of a patient id.
func HashPatientID(id string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(id)))
}

// ScrubPII replaces emails with [EMAIL] and phone numbers with [PHONE].
func ScrubPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	return phoneRe.ReplaceAllString(text, "[PHONE]")
}

func scrubReport(r *Report) *Report {
	cp := r.Clone()
	cp.PatientID = HashPatientID(r.PatientID)
	cp.Details = ScrubPII(cp.Details)
	cp.LLMAnalysis = ScrubPII(cp.LLMAnalysis)
	for i := range cp.Symptoms {
		cp.Symptoms[i] = ScrubPII(cp.Symptoms[i])
	}
	for i := range cp.Recommendations {
		cp.Recommendations[i] = ScrubPII(cp.Recommendations[i])
	}
	return cp
}
