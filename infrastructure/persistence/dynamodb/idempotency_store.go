package dynamodb

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
	"go.uber.org/zap"

	"planner-backend/application/ports"
	pkgerrors "planner-backend/pkg/errors"
)

// idempotencyTTL is how long a dispatch record stays replayable. Records
// expire via DynamoDB TTL; after expiry a duplicate reprocesses, which is
// safe because the arrival-time bucket in the key has long since moved on.
const idempotencyTTL = 24 * time.Hour

// IdempotencyStore implements ports.IdempotencyStore with conditional
// writes, so under concurrent duplicates exactly one result is recorded.
type IdempotencyStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewIdempotencyStore creates a new IdempotencyStore
func NewIdempotencyStore(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.IdempotencyStore {
	return &IdempotencyStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// idempotencyItem represents the DynamoDB item for one recorded dispatch
type idempotencyItem struct {
	PK         string `dynamodbav:"PK"` // IDEM#<user_id>
	SK         string `dynamodbav:"SK"` // <operation>#<hash>
	EntityType string `dynamodbav:"EntityType"`
	Result     string `dynamodbav:"Result"` // JSON-encoded dispatch result
	CreatedAt  string `dynamodbav:"CreatedAt"`
	TTL        int64  `dynamodbav:"TTL"`
}

func idempotencyPK(userID string) string {
	return fmt.Sprintf("IDEM#%s", userID)
}

func idempotencySK(key ports.IdempotencyKey) string {
	return fmt.Sprintf("%s#%s", key.Operation, key.Hash)
}

// Get returns the recorded result for a key, if any
func (s *IdempotencyStore) Get(ctx context.Context, key ports.IdempotencyKey) (json.RawMessage, bool, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: idempotencyPK(key.UserID)},
			"SK": &types.AttributeValueMemberS{Value: idempotencySK(key)},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, false, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to get idempotency record: %v", err))
	}
	if result.Item == nil {
		return nil, false, nil
	}

	var item idempotencyItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, false, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to unmarshal idempotency record: %v", err))
	}

	// TTL deletion lags expiry; treat a logically expired record as absent
	if item.TTL > 0 && time.Now().Unix() > item.TTL {
		return nil, false, nil
	}

	return json.RawMessage(item.Result), true, nil
}

// Store records a result under the key. The write is conditional on the
// key not existing: when concurrent duplicates race, the first write wins
// and the rest are silently absorbed.
func (s *IdempotencyStore) Store(ctx context.Context, key ports.IdempotencyKey, result interface{}) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to encode idempotency result: %v", err))
	}

	createdAt := key.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	item := idempotencyItem{
		PK:         idempotencyPK(key.UserID),
		SK:         idempotencySK(key),
		EntityType: "IDEMPOTENCY",
		Result:     string(encoded),
		CreatedAt:  createdAt.UTC().Format(time.RFC3339),
		TTL:        createdAt.Add(idempotencyTTL).Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to marshal idempotency record: %v", err))
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			s.logger.Debug("idempotency record already written by a concurrent duplicate",
				zap.String("user_id", key.UserID),
				zap.String("operation", key.Operation),
			)
			return nil
		}
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to store idempotency record: %v", err))
	}

	return nil
}
