package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"
)

// EntryRepository implements ports.EntryRepository on a single DynamoDB
// table. Entries sort under their user partition by creation time, so a
// day window is one key-condition query.
type EntryRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.EntryRepository {
	return &EntryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// entryItem represents the DynamoDB item structure for an entry
type entryItem struct {
	PK            string                 `dynamodbav:"PK"` // USER#<user_id>
	SK            string                 `dynamodbav:"SK"` // ENTRY#<created_at>#<entry_id>
	EntityType    string                 `dynamodbav:"EntityType"`
	EntryID       string                 `dynamodbav:"EntryID"`
	UserID        string                 `dynamodbav:"UserID"`
	InputKind     string                 `dynamodbav:"InputKind"`
	ModuleKind    string                 `dynamodbav:"ModuleKind"`
	Content       string                 `dynamodbav:"Content"`
	Title         string                 `dynamodbav:"Title"`
	Payload       map[string]interface{} `dynamodbav:"Payload,omitempty"`
	Status        string                 `dynamodbav:"Status"`
	FailureReason string                 `dynamodbav:"FailureReason,omitempty"`
	CreatedAt     string                 `dynamodbav:"CreatedAt"`
}

// calendarEventItem represents the DynamoDB item for an entry's linked
// external calendar event
type calendarEventItem struct {
	PK              string `dynamodbav:"PK"` // USER#<user_id>
	SK              string `dynamodbav:"SK"` // CALEVT#<entry_id>
	EntityType      string `dynamodbav:"EntityType"`
	EntryID         string `dynamodbav:"EntryID"`
	ExternalEventID string `dynamodbav:"ExternalEventID"`
	Title           string `dynamodbav:"Title"`
	Start           string `dynamodbav:"Start"`
	End             string `dynamodbav:"End"`
	Location        string `dynamodbav:"Location,omitempty"`
	SMSSent         bool   `dynamodbav:"SMSSent"`
	CreatedAt       string `dynamodbav:"CreatedAt"`
}

// skTimeLayout is a fixed-width UTC timestamp with all nine fractional
// digits. RFC3339Nano trims trailing zeros, which makes its strings sort
// out of chronological order ("...00.5Z" before "...00Z"), so sort keys
// and window bounds always use this layout instead. RFC3339Nano still
// parses it.
const skTimeLayout = "2006-01-02T15:04:05.000000000Z"

func entryPK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func entrySK(createdAt time.Time, id valueobjects.EntryID) string {
	return fmt.Sprintf("ENTRY#%s#%s", createdAt.UTC().Format(skTimeLayout), id.String())
}

func calendarEventSK(id valueobjects.EntryID) string {
	return fmt.Sprintf("CALEVT#%s", id.String())
}

func toEntryItem(entry *entities.Entry) entryItem {
	return entryItem{
		PK:            entryPK(entry.UserID()),
		SK:            entrySK(entry.CreatedAt(), entry.ID()),
		EntityType:    "ENTRY",
		EntryID:       entry.ID().String(),
		UserID:        entry.UserID(),
		InputKind:     string(entry.InputKind()),
		ModuleKind:    string(entry.Kind()),
		Content:       entry.Content().Text(),
		Title:         entry.Title(),
		Payload:       entry.Payload(),
		Status:        string(entry.Status()),
		FailureReason: entry.FailureReason(),
		CreatedAt:     entry.CreatedAt().UTC().Format(skTimeLayout),
	}
}

func toCalendarEventItem(userID string, event *entities.CalendarEvent) calendarEventItem {
	return calendarEventItem{
		PK:              entryPK(userID),
		SK:              calendarEventSK(event.EntryID()),
		EntityType:      "CALENDAR_EVENT",
		EntryID:         event.EntryID().String(),
		ExternalEventID: event.ExternalEventID(),
		Title:           event.Title(),
		Start:           event.Start().UTC().Format(time.RFC3339),
		End:             event.End().UTC().Format(time.RFC3339),
		Location:        event.Location(),
		SMSSent:         event.SMSSent(),
		CreatedAt:       event.CreatedAt().UTC().Format(skTimeLayout),
	}
}

// Save persists an entry on its own
func (r *EntryRepository) Save(ctx context.Context, entry *entities.Entry) error {
	av, err := attributevalue.MarshalMap(toEntryItem(entry))
	if err != nil {
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to marshal entry: %v", err))
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("failed to save entry",
			zap.Error(err),
			zap.String("entry_id", entry.ID().String()),
			zap.String("user_id", entry.UserID()),
		)
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to save entry: %v", err))
	}

	return nil
}

// SaveWithCalendarEvent persists an entry and its linked calendar event in
// one TransactWriteItems call, so the pair commits or fails together
func (r *EntryRepository) SaveWithCalendarEvent(ctx context.Context, entry *entities.Entry, event *entities.CalendarEvent) error {
	entryAV, err := attributevalue.MarshalMap(toEntryItem(entry))
	if err != nil {
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to marshal entry: %v", err))
	}
	eventAV, err := attributevalue.MarshalMap(toCalendarEventItem(entry.UserID(), event))
	if err != nil {
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to marshal calendar event: %v", err))
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: entryAV}},
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: eventAV}},
		},
	}

	if _, err := r.client.TransactWriteItems(ctx, input); err != nil {
		r.logger.Error("failed to save entry with calendar event",
			zap.Error(err),
			zap.String("entry_id", entry.ID().String()),
			zap.String("external_event_id", event.ExternalEventID()),
		)
		return pkgerrors.NewPersistenceError(fmt.Sprintf("failed to save entry with calendar event: %v", err))
	}

	return nil
}

// GetByID loads a single entry. The SK embeds the creation timestamp, so
// the lookup is a begins_with query on the entry prefix plus a client-side
// match on the identifier suffix.
func (r *EntryRepository) GetByID(ctx context.Context, userID string, id valueobjects.EntryID) (*entities.Entry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: entryPK(userID)},
			":sk": &types.AttributeValueMemberS{Value: "ENTRY#"},
		},
		FilterExpression: aws.String("EntryID = :id"),
	}
	input.ExpressionAttributeValues[":id"] = &types.AttributeValueMemberS{Value: id.String()}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to query entry: %v", err))
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("entry not found: %s", id.String()))
	}

	var item entryItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to unmarshal entry: %v", err))
	}

	return fromEntryItem(item)
}

// GetCalendarEvent loads the calendar event linked to an entry, nil when
// none exists
func (r *EntryRepository) GetCalendarEvent(ctx context.Context, userID string, id valueobjects.EntryID) (*entities.CalendarEvent, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: entryPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: calendarEventSK(id)},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to get calendar event: %v", err))
	}
	if result.Item == nil {
		return nil, nil
	}

	var item calendarEventItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to unmarshal calendar event: %v", err))
	}

	return fromCalendarEventItem(item)
}

// ListByWindow returns a user's entries created within [from, to), ordered
// by creation time ascending
func (r *EntryRepository) ListByWindow(ctx context.Context, userID string, from, to time.Time) ([]*entities.Entry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND SK BETWEEN :from AND :to"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: entryPK(userID)},
			":from": &types.AttributeValueMemberS{Value: "ENTRY#" + from.UTC().Format(skTimeLayout)},
			":to":   &types.AttributeValueMemberS{Value: "ENTRY#" + to.UTC().Format(skTimeLayout)},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var entries []*entities.Entry
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to query entries: %v", err))
		}
		for _, raw := range page.Items {
			var item entryItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.NewPersistenceError(fmt.Sprintf("failed to unmarshal entry: %v", err))
			}
			entry, err := fromEntryItem(item)
			if err != nil {
				r.logger.Warn("skipping unreadable entry item",
					zap.String("user_id", userID),
					zap.String("sk", item.SK),
					zap.Error(err),
				)
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func fromEntryItem(item entryItem) (*entities.Entry, error) {
	id, err := valueobjects.NewEntryIDFromString(item.EntryID)
	if err != nil {
		return nil, fmt.Errorf("invalid entry id %q: %w", item.EntryID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid entry timestamp %q: %w", item.CreatedAt, err)
	}
	inputKind, err := valueobjects.ParseInputKind(item.InputKind)
	if err != nil {
		return nil, fmt.Errorf("invalid input kind %q: %w", item.InputKind, err)
	}
	return entities.ReconstructEntry(
		id,
		item.UserID,
		inputKind,
		valueobjects.ModuleKind(item.ModuleKind),
		valueobjects.NewCanonicalContent(item.Content),
		item.Title,
		valueobjects.Payload(item.Payload),
		entities.EntryStatus(item.Status),
		item.FailureReason,
		createdAt,
	)
}

func fromCalendarEventItem(item calendarEventItem) (*entities.CalendarEvent, error) {
	id, err := valueobjects.NewEntryIDFromString(item.EntryID)
	if err != nil {
		return nil, fmt.Errorf("invalid entry id %q: %w", item.EntryID, err)
	}
	start, err := time.Parse(time.RFC3339, item.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid event start %q: %w", item.Start, err)
	}
	end, err := time.Parse(time.RFC3339, item.End)
	if err != nil {
		return nil, fmt.Errorf("invalid event end %q: %w", item.End, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid event timestamp %q: %w", item.CreatedAt, err)
	}
	return entities.ReconstructCalendarEvent(
		id,
		item.ExternalEventID,
		item.Title,
		start, end,
		item.Location,
		item.SMSSent,
		createdAt,
	), nil
}
