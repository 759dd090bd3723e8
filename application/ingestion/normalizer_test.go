package ingestion_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"planner-backend/application/ingestion"
	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_TextPassesThrough(t *testing.T) {
	mockTranscriber := new(mocks.MockTranscriber)
	normalizer := ingestion.NewNormalizer(mockTranscriber, zap.NewNop())

	content, err := normalizer.Normalize(context.Background(), ingestion.RawInput{
		Kind: valueobjects.InputText,
		Text: "  dentist friday at 2pm  ",
	})

	require.NoError(t, err)
	assert.Equal(t, "dentist friday at 2pm", content.Text())
	assert.False(t, content.HasMedia())
	mockTranscriber.AssertNotCalled(t, "Transcribe")
}

func TestNormalize_AudioTranscribed(t *testing.T) {
	ctx := context.Background()
	audio := []byte("fake-audio-bytes")

	mockTranscriber := new(mocks.MockTranscriber)
	mockTranscriber.On("Transcribe", ctx, audio, "note.m4a").Return("buy milk", nil)

	normalizer := ingestion.NewNormalizer(mockTranscriber, zap.NewNop())

	content, err := normalizer.Normalize(ctx, ingestion.RawInput{
		Kind:     valueobjects.InputAudio,
		Payload:  audio,
		Filename: "note.m4a",
	})

	require.NoError(t, err)
	assert.Equal(t, "buy milk", content.Text())
	mockTranscriber.AssertExpectations(t)
}

func TestNormalize_VideoUsesDefaultFilename(t *testing.T) {
	ctx := context.Background()
	payload := []byte("fake-video-bytes")

	mockTranscriber := new(mocks.MockTranscriber)
	mockTranscriber.On("Transcribe", ctx, payload, "capture.mp4").Return("meeting recap", nil)

	normalizer := ingestion.NewNormalizer(mockTranscriber, zap.NewNop())

	content, err := normalizer.Normalize(ctx, ingestion.RawInput{
		Kind:    valueobjects.InputVideo,
		Payload: payload,
	})

	require.NoError(t, err)
	assert.Equal(t, "meeting recap", content.Text())
	mockTranscriber.AssertExpectations(t)
}

func TestNormalize_AudioWithoutPayloadRejected(t *testing.T) {
	mockTranscriber := new(mocks.MockTranscriber)
	normalizer := ingestion.NewNormalizer(mockTranscriber, zap.NewNop())

	_, err := normalizer.Normalize(context.Background(), ingestion.RawInput{
		Kind: valueobjects.InputAudio,
	})

	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	mockTranscriber.AssertNotCalled(t, "Transcribe")
}

func TestNormalize_EmptyTranscriptIsNotAnError(t *testing.T) {
	ctx := context.Background()
	audio := []byte("silence")

	mockTranscriber := new(mocks.MockTranscriber)
	mockTranscriber.On("Transcribe", ctx, audio, "capture.m4a").Return("", nil)

	normalizer := ingestion.NewNormalizer(mockTranscriber, zap.NewNop())

	content, err := normalizer.Normalize(ctx, ingestion.RawInput{
		Kind:    valueobjects.InputAudio,
		Payload: audio,
	})

	require.NoError(t, err)
	assert.True(t, content.IsEmpty())
	mockTranscriber.AssertExpectations(t)
}

func TestNormalize_TransientTranscriptionRetried(t *testing.T) {
	ctx := context.Background()
	audio := []byte("fake-audio-bytes")

	mockTranscriber := new(mocks.MockTranscriber)
	mockTranscriber.On("Transcribe", ctx, audio, "capture.m4a").
		Return("", pkgerrors.NewTransientError("upstream hiccup")).Once()
	mockTranscriber.On("Transcribe", ctx, audio, "capture.m4a").
		Return("buy milk", nil).Once()

	normalizer := ingestion.NewNormalizer(mockTranscriber, zap.NewNop())

	content, err := normalizer.Normalize(ctx, ingestion.RawInput{
		Kind:    valueobjects.InputAudio,
		Payload: audio,
	})

	require.NoError(t, err)
	assert.Equal(t, "buy milk", content.Text())
	mockTranscriber.AssertExpectations(t)
}

func TestNormalize_QuotaFailureFailsFast(t *testing.T) {
	ctx := context.Background()
	audio := []byte("fake-audio-bytes")

	mockTranscriber := new(mocks.MockTranscriber)
	mockTranscriber.On("Transcribe", ctx, audio, "capture.m4a").
		Return("", pkgerrors.NewQuotaError("openai")).Once()

	normalizer := ingestion.NewNormalizer(mockTranscriber, zap.NewNop())

	_, err := normalizer.Normalize(ctx, ingestion.RawInput{
		Kind:    valueobjects.InputAudio,
		Payload: audio,
	})

	assert.Error(t, err)
	assert.True(t, pkgerrors.IsQuota(err))
	mockTranscriber.AssertExpectations(t)
	mockTranscriber.AssertNumberOfCalls(t, "Transcribe", 1)
}

func TestNormalize_ImagePairsCaptionWithMedia(t *testing.T) {
	mockTranscriber := new(mocks.MockTranscriber)
	normalizer := ingestion.NewNormalizer(mockTranscriber, zap.NewNop())

	content, err := normalizer.Normalize(context.Background(), ingestion.RawInput{
		Kind:      valueobjects.InputImage,
		Payload:   []byte{0xff, 0xd8},
		Text:      "whiteboard from standup",
		MediaType: "image/jpeg",
	})

	require.NoError(t, err)
	assert.Equal(t, "whiteboard from standup", content.Text())
	assert.True(t, content.HasMedia())
	assert.Equal(t, "image/jpeg", content.Media().MediaType())
}
