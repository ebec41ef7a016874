package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wolfman30/mindscreen/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// dynamoRecord keeps queryable attributes top-level and the full session as a JSON payload.
type dynamoRecord struct {
	SessionID string `dynamodbav:"sessionId"`
	PatientID string `dynamodbav:"patientId,omitempty"`
	Phase     string `dynamodbav:"phase"`
	Payload   string `dynamodbav:"payload"`
	UpdatedAt string `dynamodbav:"updatedAt"`
	ExpiresAt int64  `dynamodbav:"expiresAt,omitempty"`
}

// DynamoStore persists sessions to a DynamoDB table keyed by sessionId with a TTL attribute.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
	logger    *logging.Logger
}

func NewDynamoStore(client dynamoAPI, tableName string, ttl time.Duration, logger *logging.Logger) *DynamoStore {
	if client == nil {
		panic("session: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("session: table name cannot be empty")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoStore{client: client, tableName: tableName, ttl: ttl, logger: logger}
}

func (s *DynamoStore) Load(ctx context.Context, id string) (*Session, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            map[string]types.AttributeValue{"sessionId": &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("session: failed to load %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal %s: %w", id, err)
	}
	if rec.ExpiresAt > 0 && rec.ExpiresAt < time.Now().Unix() {
		// DynamoDB deletes expired items lazily.
		return nil, ErrNotFound
	}

	var sess Session
	if err := json.Unmarshal([]byte(rec.Payload), &sess); err != nil {
		return nil, fmt.Errorf("session: failed to decode %s: %w", id, err)
	}
	return &sess, nil
}

func (s *DynamoStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session: cannot save session without id")
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: failed to marshal %s: %w", sess.ID, err)
	}
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(dynamoRecord{
		SessionID: sess.ID,
		PatientID: sess.PatientID,
		Phase:     string(sess.Phase),
		Payload:   string(payload),
		UpdatedAt: now.Format(time.RFC3339Nano),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("session: failed to marshal record %s: %w", sess.ID, err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("session: failed to persist %s: %w", sess.ID, err)
	}
	s.logger.Debug("session saved", "session_id", sess.ID, "phase", sess.Phase)
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       map[string]types.AttributeValue{"sessionId": &types.AttributeValueMemberS{Value: id}},
	}); err != nil {
		return fmt.Errorf("session: failed to delete %s: %w", id, err)
	}
	return nil
}
