package classification_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"planner-backend/application/classification"
	"planner-backend/application/ports"
	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func classifyArgs() []interface{} {
	return []interface{}{
		mock.Anything,
		mock.AnythingOfType("valueobjects.CanonicalContent"),
		valueobjects.TaxonomyStrings(),
		mock.AnythingOfType("time.Time"),
		"America/Toronto",
	}
}

func newService(adapter ports.IntentClassifier) *classification.Service {
	return classification.NewService(adapter, "America/Toronto", 0, nil, zap.NewNop())
}

func TestClassify_EmptyContentShortCircuits(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	service := newService(mockAdapter)

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent(""))

	require.NoError(t, err)
	assert.Equal(t, valueobjects.FallbackKind, result.Kind)
	assert.True(t, result.FellBack)
	mockAdapter.AssertNotCalled(t, "Classify")
}

func TestClassify_ConfidentVerdictAccepted(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).Return(ports.Classification{
		ModuleKind:     "calendar",
		Title:          "Dentist appointment",
		SpokenResponse: "Booked your dentist appointment for Friday.",
		Fields: valueobjects.Payload{
			"title": "Dentist",
			"start": "2026-08-29T14:00:00Z",
			"end":   "2026-08-29T15:00:00Z",
		},
		Confidence: 0.93,
	}, nil)

	service := newService(mockAdapter)

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("dentist friday at 2pm"))

	require.NoError(t, err)
	assert.Equal(t, valueobjects.KindCalendar, result.Kind)
	assert.Equal(t, "Dentist appointment", result.Title)
	assert.False(t, result.FellBack)
	mockAdapter.AssertExpectations(t)
}

func TestClassify_UnknownKindFallsBack(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).Return(ports.Classification{
		ModuleKind: "shopping_list",
		Title:      "Groceries",
		Confidence: 0.9,
	}, nil)

	service := newService(mockAdapter)

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("milk eggs bread"))

	require.NoError(t, err)
	assert.Equal(t, valueobjects.FallbackKind, result.Kind)
	assert.True(t, result.FellBack)
}

func TestClassify_LowConfidenceFallsBack(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).Return(ports.Classification{
		ModuleKind: "calendar",
		Title:      "Something on Friday",
		Confidence: 0.2,
	}, nil)

	service := newService(mockAdapter)

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("friday maybe"))

	require.NoError(t, err)
	assert.Equal(t, valueobjects.FallbackKind, result.Kind)
	assert.True(t, result.FellBack)
}

func TestClassify_SchemaMismatchFallsBack(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).Return(ports.Classification{
		ModuleKind: "calendar",
		Title:      "Dentist",
		Fields:     valueobjects.Payload{"title": "Dentist"}, // no times
		Confidence: 0.95,
	}, nil)

	service := newService(mockAdapter)

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("dentist sometime"))

	require.NoError(t, err)
	assert.Equal(t, valueobjects.FallbackKind, result.Kind)
	assert.True(t, result.FellBack)
}

func TestClassify_TransientErrorRetriedThenAccepted(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).
		Return(ports.Classification{}, pkgerrors.NewTransientError("upstream hiccup")).Once()
	mockAdapter.On("Classify", classifyArgs()...).
		Return(ports.Classification{
			ModuleKind: "idea",
			Title:      "App idea",
			Confidence: 0.8,
		}, nil).Once()

	service := newService(mockAdapter)

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("an app that waters plants"))

	require.NoError(t, err)
	assert.Equal(t, valueobjects.KindIdea, result.Kind)
	assert.False(t, result.FellBack)
	mockAdapter.AssertExpectations(t)
}

func TestClassify_ExhaustedRetriesRouteToFallback(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).
		Return(ports.Classification{}, pkgerrors.NewTransientError("upstream down"))

	service := newService(mockAdapter)

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("remember to call mom"))

	require.NoError(t, err)
	assert.Equal(t, valueobjects.FallbackKind, result.Kind)
	assert.True(t, result.FellBack)
	assert.NotEmpty(t, result.Title)
	mockAdapter.AssertNumberOfCalls(t, "Classify", 3)
}

func TestClassify_QuotaErrorFailsFastToFallback(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).
		Return(ports.Classification{}, pkgerrors.NewQuotaError("gemini")).Once()

	service := newService(mockAdapter)

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("log lunch expense"))

	require.NoError(t, err)
	assert.Equal(t, valueobjects.FallbackKind, result.Kind)
	mockAdapter.AssertNumberOfCalls(t, "Classify", 1)
}

func TestClassify_MissingTitleDerivedFromContent(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).Return(ports.Classification{
		ModuleKind: "memo",
		Confidence: 0.7,
	}, nil)

	service := newService(mockAdapter)

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("short note"))

	require.NoError(t, err)
	assert.Equal(t, "short note", result.Title)
}

func TestClassify_FallbackRecordsMetric(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).Return(ports.Classification{
		ModuleKind: "calendar",
		Title:      "Maybe an event",
		Confidence: 0.2,
	}, nil)
	recorder := new(mocks.MockFallbackRecorder)
	recorder.On("RecordClassificationFallback", mock.Anything, "low_confidence").Return()

	service := classification.NewService(mockAdapter, "America/Toronto", 0, recorder, zap.NewNop())

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("see you thursday maybe"))

	require.NoError(t, err)
	assert.True(t, result.FellBack)
	recorder.AssertExpectations(t)
	recorder.AssertNumberOfCalls(t, "RecordClassificationFallback", 1)
}

func TestClassify_UnknownKindRecordsMetric(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).Return(ports.Classification{
		ModuleKind: "grocery",
		Confidence: 0.9,
	}, nil)
	recorder := new(mocks.MockFallbackRecorder)
	recorder.On("RecordClassificationFallback", mock.Anything, "unknown_kind").Return()

	service := classification.NewService(mockAdapter, "America/Toronto", 0, recorder, zap.NewNop())

	result, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("buy apples"))

	require.NoError(t, err)
	assert.Equal(t, valueobjects.FallbackKind, result.Kind)
	recorder.AssertExpectations(t)
	recorder.AssertNumberOfCalls(t, "RecordClassificationFallback", 1)
}

func TestClassify_ConfidentVerdictRecordsNoMetric(t *testing.T) {
	mockAdapter := new(mocks.MockIntentClassifier)
	mockAdapter.On("Classify", classifyArgs()...).Return(ports.Classification{
		ModuleKind: "memo",
		Title:      "Note",
		Confidence: 0.9,
	}, nil)
	recorder := new(mocks.MockFallbackRecorder)

	service := classification.NewService(mockAdapter, "America/Toronto", 0, recorder, zap.NewNop())

	_, err := service.Classify(context.Background(), valueobjects.NewCanonicalContent("plain note"))

	require.NoError(t, err)
	recorder.AssertNotCalled(t, "RecordClassificationFallback")
}
