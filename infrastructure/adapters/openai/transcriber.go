package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	pkgerrors "planner-backend/pkg/errors"
)

// Transcriber implements ports.Transcriber using the OpenAI audio
// transcription API
type Transcriber struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewTranscriber creates a new Transcriber. model defaults to whisper-1
// when empty.
func NewTranscriber(apiKey, model string, logger *zap.Logger) (*Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "whisper-1"
	}
	return &Transcriber{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}, nil
}

// Transcribe converts captured audio to text. An empty transcript is a
// valid outcome (silence); classification downstream handles it.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", pkgerrors.NewValidationError("audio payload is empty")
	}
	if filename == "" {
		filename = "capture.m4a"
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(t.model),
		File:  openai.File(bytes.NewReader(audio), filename, contentTypeFor(filename)),
	})
	if err != nil {
		return "", classifyTranscriptionError(err)
	}

	text := strings.TrimSpace(resp.Text)
	t.logger.Debug("transcription completed",
		zap.String("filename", filename),
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_chars", len(text)),
	)

	return text, nil
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// classifyTranscriptionError maps provider failures onto the error
// taxonomy so the retry layer knows what to do with them
func classifyTranscriptionError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return pkgerrors.NewAuthExpiredError("openai")
		case 429:
			return pkgerrors.NewRateLimitError("openai")
		case 400, 413, 415, 422:
			return pkgerrors.NewValidationError(fmt.Sprintf("transcription rejected: %v", err))
		}
	}
	return pkgerrors.NewTransientError(fmt.Sprintf("transcription failed: %v", err))
}
