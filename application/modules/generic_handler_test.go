package modules_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"planner-backend/application/modules"
	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
	"planner-backend/domain/events"
	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testUser(t *testing.T) *entities.User {
	t.Helper()
	user, err := entities.NewUser("user-123", "sam@example.com", "Sam", "hash")
	require.NoError(t, err)
	return user
}

func textDraft(user *entities.User, kind valueobjects.ModuleKind, text string) modules.Draft {
	return modules.Draft{
		User:      user,
		InputKind: valueobjects.InputText,
		Kind:      kind,
		Content:   valueobjects.NewCanonicalContent(text),
		Title:     text,
	}
}

func TestGenericHandler_Handle(t *testing.T) {
	ctx := context.Background()
	mockEntries := new(mocks.MockEntryRepository)
	mockBus := new(mocks.MockEventBus)

	mockEntries.On("Save", ctx, mock.AnythingOfType("*entities.Entry")).Return(nil)
	mockBus.On("PublishBatch", ctx, mock.AnythingOfType("[]events.DomainEvent")).Return(nil)

	handler := modules.NewGenericHandler(mockEntries, mockBus, zap.NewNop())

	result, err := handler.Handle(ctx, textDraft(testUser(t), valueobjects.KindMemo, "buy milk"))

	require.NoError(t, err)
	assert.Equal(t, entities.StatusProcessed, result.Entry.Status())
	assert.Nil(t, result.CalendarEvent)
	assert.NotEmpty(t, result.Confirmation)
	assert.Empty(t, result.FailureKind)
	assert.Empty(t, result.Entry.GetUncommittedEvents())
	mockEntries.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestGenericHandler_PrefersClassifierPhrasing(t *testing.T) {
	ctx := context.Background()
	mockEntries := new(mocks.MockEntryRepository)
	mockBus := new(mocks.MockEventBus)

	mockEntries.On("Save", ctx, mock.Anything).Return(nil)
	mockBus.On("PublishBatch", ctx, mock.Anything).Return(nil)

	handler := modules.NewGenericHandler(mockEntries, mockBus, zap.NewNop())

	draft := textDraft(testUser(t), valueobjects.KindIdea, "app that waters plants")
	draft.SpokenResponse = "Love it, saved that idea."

	result, err := handler.Handle(ctx, draft)

	require.NoError(t, err)
	assert.Equal(t, "Love it, saved that idea.", result.Confirmation)
}

func TestGenericHandler_SaveFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	mockEntries := new(mocks.MockEntryRepository)
	mockBus := new(mocks.MockEventBus)

	mockEntries.On("Save", ctx, mock.Anything).Return(pkgerrors.NewPersistenceError("dynamodb down"))

	handler := modules.NewGenericHandler(mockEntries, mockBus, zap.NewNop())

	result, err := handler.Handle(ctx, textDraft(testUser(t), valueobjects.KindMemo, "buy milk"))

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypePersistence))
	mockBus.AssertNotCalled(t, "PublishBatch")
}

func TestGenericHandler_EventPublishFailureIgnored(t *testing.T) {
	ctx := context.Background()
	mockEntries := new(mocks.MockEntryRepository)
	mockBus := new(mocks.MockEventBus)

	mockEntries.On("Save", ctx, mock.Anything).Return(nil)
	mockBus.On("PublishBatch", ctx, mock.Anything).Return(pkgerrors.NewTransientError("bus down"))

	handler := modules.NewGenericHandler(mockEntries, mockBus, zap.NewNop())

	result, err := handler.Handle(ctx, textDraft(testUser(t), valueobjects.KindDiary, "long day"))

	require.NoError(t, err)
	assert.Equal(t, entities.StatusProcessed, result.Entry.Status())
}

func TestGenericHandler_PublishesEntryCaptured(t *testing.T) {
	ctx := context.Background()
	mockEntries := new(mocks.MockEntryRepository)
	mockBus := new(mocks.MockEventBus)

	mockEntries.On("Save", ctx, mock.Anything).Return(nil)

	var published []events.DomainEvent
	mockBus.On("PublishBatch", ctx, mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(1).([]events.DomainEvent)
	}).Return(nil)

	handler := modules.NewGenericHandler(mockEntries, mockBus, zap.NewNop())

	_, err := handler.Handle(ctx, textDraft(testUser(t), valueobjects.KindMood, "feeling great"))

	require.NoError(t, err)
	require.Len(t, published, 1)
	captured, ok := published[0].(events.EntryCaptured)
	require.True(t, ok)
	assert.Equal(t, "user-123", captured.UserID)
	assert.Equal(t, "mood", captured.ModuleKind)
}
