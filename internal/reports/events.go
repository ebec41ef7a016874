package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// EventReportStored is the type attribute on report notifications.
const EventReportStored = "report.stored"

// SQSAPI is the subset of the SQS client used by Publisher.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// StoredEvent notifies downstream consumers that a report exists. It carries no clinical text.
type StoredEvent struct {
	Type      string    `json:"type"`
	ReportID  string    `json:"report_id"`
	PatientID string    `json:"patient_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher sends report notifications to an SQS queue.
type Publisher struct {
	client   SQSAPI
	queueURL string
}

func NewPublisher(client SQSAPI, queueURL string) *Publisher {
	if client == nil {
		panic("reports: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("reports: SQS queueURL cannot be empty")
	}
	return &Publisher{client: client, queueURL: queueURL}
}

// PublishStored sends one notification, deduplicated downstream by report id.
func (p *Publisher) PublishStored(ctx context.Context, report *Report) error {
	body, err := json.Marshal(StoredEvent{
		Type:      EventReportStored,
		ReportID:  report.ID,
		PatientID: report.PatientID,
		SessionID: report.SessionID,
		CreatedAt: report.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("reports: marshal event: %w", err)
	}
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(EventReportStored)},
			"report_id":  {DataType: aws.String("String"), StringValue: aws.String(report.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("reports: failed to send SQS message: %w", err)
	}
	return nil
}
