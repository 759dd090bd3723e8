package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"planner-backend/application/classification"
	"planner-backend/application/ingestion"
	"planner-backend/application/modules"
	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockModuleHandler struct {
	mock.Mock
}

func (m *mockModuleHandler) Handle(ctx context.Context, draft modules.Draft) (*modules.HandleResult, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*modules.HandleResult), args.Error(1)
}

type dispatcherFixture struct {
	dispatcher  *Dispatcher
	transcriber *mocks.MockTranscriber
	classifier  *mocks.MockIntentClassifier
	idempotency *mocks.MockIdempotencyStore
	calendar    *mockModuleHandler
	generic     *mockModuleHandler
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()
	logger := zap.NewNop()

	f := &dispatcherFixture{
		transcriber: new(mocks.MockTranscriber),
		classifier:  new(mocks.MockIntentClassifier),
		idempotency: new(mocks.MockIdempotencyStore),
		calendar:    new(mockModuleHandler),
		generic:     new(mockModuleHandler),
	}

	registry, err := NewRegistry(f.calendar, f.generic)
	require.NoError(t, err)

	f.dispatcher = NewDispatcher(
		ingestion.NewNormalizer(f.transcriber, logger),
		classification.NewService(f.classifier, "UTC", 0, nil, logger),
		registry,
		f.idempotency,
		logger,
	)
	return f
}

func dispatchUser(t *testing.T) *entities.User {
	t.Helper()
	user, err := entities.NewUser("user-123", "sam@example.com", "Sam", "hash")
	require.NoError(t, err)
	return user
}

func processedResult(t *testing.T, kind valueobjects.ModuleKind, text string) *modules.HandleResult {
	t.Helper()
	entry, err := entities.NewEntryDraft(
		"user-123", valueobjects.InputText, kind,
		valueobjects.NewCanonicalContent(text), text, nil,
	)
	require.NoError(t, err)
	require.NoError(t, entry.MarkProcessed())
	return &modules.HandleResult{Entry: entry, Confirmation: "Saved it."}
}

func TestDispatch_TextToMemo(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)

	f.idempotency.On("Get", ctx, mock.AnythingOfType("ports.IdempotencyKey")).Return(nil, false, nil)
	f.classifier.On("Classify", ctx, mock.Anything, mock.Anything, mock.Anything, "UTC").
		Return(ports.Classification{ModuleKind: "memo", Title: "Buy milk", Confidence: 0.9}, nil)
	f.generic.On("Handle", ctx, mock.AnythingOfType("modules.Draft")).
		Return(processedResult(t, valueobjects.KindMemo, "buy milk"), nil)
	f.idempotency.On("Store", ctx, mock.AnythingOfType("ports.IdempotencyKey"), mock.AnythingOfType("*dispatch.Result")).Return(nil)

	result, err := f.dispatcher.Dispatch(ctx, dispatchUser(t), ingestion.RawInput{
		Kind: valueobjects.InputText,
		Text: "buy milk",
	})

	require.NoError(t, err)
	assert.Equal(t, "memo", result.ModuleKind)
	assert.Equal(t, string(entities.StatusProcessed), result.Status)
	assert.Equal(t, "Saved it.", result.SpokenResponse)
	assert.False(t, result.Replayed)
	assert.NotEmpty(t, result.EntryID)
	f.idempotency.AssertExpectations(t)
	f.generic.AssertExpectations(t)
	f.calendar.AssertNotCalled(t, "Handle")
}

func TestDispatch_StubKindGetsNoteSuffix(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)

	f.idempotency.On("Get", ctx, mock.Anything).Return(nil, false, nil)
	f.classifier.On("Classify", ctx, mock.Anything, mock.Anything, mock.Anything, "UTC").
		Return(ports.Classification{ModuleKind: "task", Title: "Call mom", Confidence: 0.85}, nil)
	f.generic.On("Handle", ctx, mock.Anything).
		Return(processedResult(t, valueobjects.KindTask, "call mom"), nil)
	f.idempotency.On("Store", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := f.dispatcher.Dispatch(ctx, dispatchUser(t), ingestion.RawInput{
		Kind: valueobjects.InputText,
		Text: "call mom tomorrow",
	})

	require.NoError(t, err)
	assert.Equal(t, "task", result.ModuleKind)
	assert.Contains(t, result.SpokenResponse, "Saved it.")
	assert.Contains(t, result.SpokenResponse, "task support isn't available yet")
}

func TestDispatch_DuplicateSubmissionReplayed(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)

	cached, err := json.Marshal(Result{
		EntryID:        "entry-1",
		ModuleKind:     "memo",
		Status:         string(entities.StatusProcessed),
		SpokenResponse: "Saved it.",
	})
	require.NoError(t, err)

	f.idempotency.On("Get", ctx, mock.Anything).Return(json.RawMessage(cached), true, nil)

	result, err := f.dispatcher.Dispatch(ctx, dispatchUser(t), ingestion.RawInput{
		Kind: valueobjects.InputText,
		Text: "buy milk",
	})

	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, "entry-1", result.EntryID)
	f.classifier.AssertNotCalled(t, "Classify")
	f.generic.AssertNotCalled(t, "Handle")
	f.idempotency.AssertNotCalled(t, "Store")
}

func TestDispatch_UnreadableCachedRecordReprocessed(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)

	f.idempotency.On("Get", ctx, mock.Anything).Return(json.RawMessage(`{not json`), true, nil)
	f.classifier.On("Classify", ctx, mock.Anything, mock.Anything, mock.Anything, "UTC").
		Return(ports.Classification{ModuleKind: "memo", Title: "Buy milk", Confidence: 0.9}, nil)
	f.generic.On("Handle", ctx, mock.Anything).
		Return(processedResult(t, valueobjects.KindMemo, "buy milk"), nil)
	f.idempotency.On("Store", ctx, mock.Anything, mock.Anything).Return(nil)

	result, err := f.dispatcher.Dispatch(ctx, dispatchUser(t), ingestion.RawInput{
		Kind: valueobjects.InputText,
		Text: "buy milk",
	})

	require.NoError(t, err)
	assert.False(t, result.Replayed)
	f.generic.AssertExpectations(t)
}

func TestDispatch_HandlerFailureYieldsApology(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)

	f.idempotency.On("Get", ctx, mock.Anything).Return(nil, false, nil)
	f.classifier.On("Classify", ctx, mock.Anything, mock.Anything, mock.Anything, "UTC").
		Return(ports.Classification{ModuleKind: "memo", Title: "Buy milk", Confidence: 0.9}, nil)
	f.generic.On("Handle", ctx, mock.Anything).
		Return(nil, pkgerrors.NewPersistenceError("dynamodb down"))

	result, err := f.dispatcher.Dispatch(ctx, dispatchUser(t), ingestion.RawInput{
		Kind: valueobjects.InputText,
		Text: "buy milk",
	})

	require.NoError(t, err)
	assert.Equal(t, string(entities.StatusFailed), result.Status)
	assert.Equal(t, persistenceApology, result.SpokenResponse)
	assert.Equal(t, string(pkgerrors.ErrorTypePersistence), result.FailureKind)
	assert.Empty(t, result.EntryID)
	f.idempotency.AssertNotCalled(t, "Store")
}

func TestDispatch_NormalizationFailurePropagates(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)

	f.transcriber.On("Transcribe", ctx, mock.Anything, "capture.m4a").
		Return("", pkgerrors.NewQuotaError("openai"))

	result, err := f.dispatcher.Dispatch(ctx, dispatchUser(t), ingestion.RawInput{
		Kind:    valueobjects.InputAudio,
		Payload: []byte("audio"),
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, pkgerrors.IsQuota(err))
	f.idempotency.AssertNotCalled(t, "Get")
}

func TestDispatch_IdempotencyStoreFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture(t)

	f.idempotency.On("Get", ctx, mock.Anything).Return(nil, false, nil)
	f.classifier.On("Classify", ctx, mock.Anything, mock.Anything, mock.Anything, "UTC").
		Return(ports.Classification{ModuleKind: "memo", Title: "Buy milk", Confidence: 0.9}, nil)
	f.generic.On("Handle", ctx, mock.Anything).
		Return(processedResult(t, valueobjects.KindMemo, "buy milk"), nil)
	f.idempotency.On("Store", ctx, mock.Anything, mock.Anything).
		Return(pkgerrors.NewPersistenceError("dynamodb down"))

	result, err := f.dispatcher.Dispatch(ctx, dispatchUser(t), ingestion.RawInput{
		Kind: valueobjects.InputText,
		Text: "buy milk",
	})

	require.NoError(t, err)
	assert.Equal(t, string(entities.StatusProcessed), result.Status)
}

func TestDispatch_RequiresUser(t *testing.T) {
	f := newDispatcherFixture(t)

	_, err := f.dispatcher.Dispatch(context.Background(), nil, ingestion.RawInput{
		Kind: valueobjects.InputText,
		Text: "buy milk",
	})

	assert.Error(t, err)
}

func TestIdempotencyKey_StableWithinBucket(t *testing.T) {
	f := newDispatcherFixture(t)
	content := valueobjects.NewCanonicalContent("buy milk")

	base := f.dispatcher.now().UTC().Truncate(arrivalBucket)
	a := f.dispatcher.idempotencyKey("user-123", content, base)
	b := f.dispatcher.idempotencyKey("user-123", content, base.Add(arrivalBucket-1))
	c := f.dispatcher.idempotencyKey("user-123", content, base.Add(arrivalBucket))

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Hash, c.Hash)
	assert.Equal(t, OperationDispatch, a.Operation)

	other := f.dispatcher.idempotencyKey("user-456", content, base)
	assert.NotEqual(t, a.Hash, other.Hash)
}
