package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"planner-backend/application/ports"
	pkgerrors "planner-backend/pkg/errors"
)

const (
	digestStatusClaimed = "CLAIMED"
	digestStatusSent    = "SENT"

	// claimTTL bounds how long a crashed run can block its user-day. A
	// claim that was never completed or released expires with the item.
	claimTTL = 2 * time.Hour
)

// DigestStore implements ports.DigestStore. The per-user-day marker item
// doubles as the singleton lock: Claim creates it conditionally, Complete
// overwrites it with the finished record, Release deletes it.
type DigestStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewDigestStore creates a new DigestStore
func NewDigestStore(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.DigestStore {
	return &DigestStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// digestItem represents the DynamoDB item for one user-day digest marker
type digestItem struct {
	PK         string `dynamodbav:"PK"` // USER#<user_id>
	SK         string `dynamodbav:"SK"` // DIGEST#<day>
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
	Day        string `dynamodbav:"Day"`
	Status     string `dynamodbav:"Status"`
	Subject    string `dynamodbav:"Subject,omitempty"`
	Body       string `dynamodbav:"Body,omitempty"`
	EntryCount int    `dynamodbav:"EntryCount"`
	Summarized bool   `dynamodbav:"Summarized"`
	SentAt     string `dynamodbav:"SentAt,omitempty"`
	TTL        int64  `dynamodbav:"TTL,omitempty"` // set while claimed, cleared on completion
}

func digestSK(day string) string {
	return fmt.Sprintf("DIGEST#%s", day)
}

// Claim attempts to take ownership of the user-day
func (s *DigestStore) Claim(ctx context.Context, userID, day string) (bool, *ports.DigestRecord, error) {
	now := time.Now().UTC()
	item := digestItem{
		PK:         entryPK(userID),
		SK:         digestSK(day),
		EntityType: "DIGEST",
		UserID:     userID,
		Day:        day,
		Status:     digestStatusClaimed,
		TTL:        now.Add(claimTTL).Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return false, nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to marshal digest claim: %v", err))
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			prior, err := s.get(ctx, userID, day)
			if err != nil {
				return false, nil, err
			}
			return false, prior, nil
		}
		return false, nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to claim digest day: %v", err))
	}

	return true, nil, nil
}

// Complete stores the finished digest result under the claimed marker
func (s *DigestStore) Complete(ctx context.Context, record *ports.DigestRecord) error {
	item := digestItem{
		PK:         entryPK(record.UserID),
		SK:         digestSK(record.Day),
		EntityType: "DIGEST",
		UserID:     record.UserID,
		Day:        record.Day,
		Status:     digestStatusSent,
		Subject:    record.Subject,
		Body:       record.Body,
		EntryCount: record.EntryCount,
		Summarized: record.Summarized,
		SentAt:     record.SentAt.UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to marshal digest record: %v", err))
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to complete digest: %v", err))
	}

	return nil
}

// Release abandons a claim after a failed run. Only a marker still in the
// claimed state is deleted; a concurrently completed record stays put.
func (s *DigestStore) Release(ctx context.Context, userID, day string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: entryPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: digestSK(day)},
		},
		ConditionExpression: aws.String("#st = :claimed"),
		ExpressionAttributeNames: map[string]string{
			"#st": "Status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":claimed": &types.AttributeValueMemberS{Value: digestStatusClaimed},
		},
	}

	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			s.logger.Warn("digest claim already released or completed",
				zap.String("user_id", userID),
				zap.String("day", day),
			)
			return nil
		}
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to release digest claim: %v", err))
	}

	return nil
}

func (s *DigestStore) get(ctx context.Context, userID, day string) (*ports.DigestRecord, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: entryPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: digestSK(day)},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to get digest record: %v", err))
	}
	if result.Item == nil {
		return nil, nil
	}

	var item digestItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to unmarshal digest record: %v", err))
	}

	// A still-claimed marker means the run is in flight; there is no
	// finished record to hand back yet.
	if item.Status != digestStatusSent {
		return nil, nil
	}

	sentAt, err := time.Parse(time.RFC3339, item.SentAt)
	if err != nil {
		sentAt = time.Time{}
	}

	return &ports.DigestRecord{
		UserID:     item.UserID,
		Day:        item.Day,
		Subject:    item.Subject,
		Body:       item.Body,
		EntryCount: item.EntryCount,
		Summarized: item.Summarized,
		SentAt:     sentAt,
	}, nil
}
