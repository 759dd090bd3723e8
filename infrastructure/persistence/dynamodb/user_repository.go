package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	pkgerrors "planner-backend/pkg/errors"
)

// UserRepository implements ports.UserRepository on the single table.
// API-key authentication resolves users through GSI1, keyed by the hash.
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository. indexName is the GSI
// keyed by the API key hash.
func NewUserRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// userItem represents the DynamoDB item structure for a user profile
type userItem struct {
	PK            string `dynamodbav:"PK"` // USER#<user_id>
	SK            string `dynamodbav:"SK"` // PROFILE
	GSI1PK        string `dynamodbav:"GSI1PK,omitempty"` // APIKEY#<hash>
	GSI1SK        string `dynamodbav:"GSI1SK,omitempty"` // PROFILE
	EntityType    string `dynamodbav:"EntityType"`
	UserID        string `dynamodbav:"UserID"`
	Email         string `dynamodbav:"Email"`
	Name          string `dynamodbav:"Name"`
	APIKeyHash    string `dynamodbav:"APIKeyHash"`
	SMSContact    string `dynamodbav:"SMSContact,omitempty"`
	DigestAddress string `dynamodbav:"DigestAddress,omitempty"`
	Timezone      string `dynamodbav:"Timezone"`
	Active        bool   `dynamodbav:"Active"`
	CreatedAt     string `dynamodbav:"CreatedAt"`
}

func userSK() string { return "PROFILE" }

func toUserItem(user *entities.User) userItem {
	item := userItem{
		PK:            entryPK(user.ID()),
		SK:            userSK(),
		EntityType:    "USER",
		UserID:        user.ID(),
		Email:         user.Email(),
		Name:          user.Name(),
		APIKeyHash:    user.APIKeyHash(),
		SMSContact:    user.SMSContact(),
		DigestAddress: user.DigestAddress(),
		Timezone:      user.Timezone(),
		Active:        user.IsActive(),
		CreatedAt:     user.CreatedAt().UTC().Format(time.RFC3339),
	}
	if user.APIKeyHash() != "" {
		item.GSI1PK = fmt.Sprintf("APIKEY#%s", user.APIKeyHash())
		item.GSI1SK = userSK()
	}
	return item
}

func fromUserItem(item userItem) (*entities.User, error) {
	createdAt, err := time.Parse(time.RFC3339, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid user timestamp %q: %w", item.CreatedAt, err)
	}
	return entities.ReconstructUser(
		item.UserID,
		item.Email,
		item.Name,
		item.APIKeyHash,
		item.SMSContact,
		item.DigestAddress,
		item.Timezone,
		item.Active,
		createdAt,
	), nil
}

// GetByID loads a user profile
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: entryPK(id)},
			"SK": &types.AttributeValueMemberS{Value: userSK()},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to get user: %v", err))
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("user not found: %s", id))
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to unmarshal user: %v", err))
	}

	return fromUserItem(item)
}

// GetByAPIKeyHash resolves a user from a hashed API key via GSI1
func (r *UserRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*entities.User, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("APIKEY#%s", hash)},
			":sk": &types.AttributeValueMemberS{Value: userSK()},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to query user by api key: %v", err))
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("user not found for api key")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to unmarshal user: %v", err))
	}

	return fromUserItem(item)
}

// ListActive returns all active users. The user population is small (one
// household per deployment), so a filtered scan is acceptable here.
func (r *UserRepository) ListActive(ctx context.Context) ([]*entities.User, error) {
	filter := expression.And(
		expression.Name("EntityType").Equal(expression.Value("USER")),
		expression.Name("Active").Equal(expression.Value(true)),
	)
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to build user filter: %v", err))
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var users []*entities.User
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to scan users: %v", err))
		}
		for _, raw := range page.Items {
			var item userItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to unmarshal user: %v", err))
			}
			user, err := fromUserItem(item)
			if err != nil {
				r.logger.Warn("skipping unreadable user item",
					zap.String("pk", item.PK),
					zap.Error(err),
				)
				continue
			}
			users = append(users, user)
		}
	}

	return users, nil
}

// Save persists a user profile
func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	av, err := attributevalue.MarshalMap(toUserItem(user))
	if err != nil {
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to marshal user: %v", err))
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("failed to save user",
			zap.Error(err),
			zap.String("user_id", user.ID()),
		)
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to save user: %v", err))
	}

	return nil
}
