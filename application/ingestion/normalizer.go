// Package ingestion converts raw multi-modal captures into canonical
// content. The normalizer never decides intent; it only produces uniform
// input for the classifier.
package ingestion

import (
	"context"

	"go.uber.org/zap"

	"planner-backend/application/ports"
	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/pkg/retry"
)

// RawInput is one inbound capture as received from the endpoint
type RawInput struct {
	Kind      valueobjects.InputKind
	Payload   []byte // media bytes for audio/image/video
	Text      string // direct text input, or a caption alongside media
	MediaType string // declared MIME type for image payloads
	Filename  string // original filename hint for transcription
}

// Normalizer produces canonical content from raw input
type Normalizer struct {
	transcriber ports.Transcriber
	policy      retry.Policy
	logger      *zap.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(transcriber ports.Transcriber, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		transcriber: transcriber,
		policy:      retry.DefaultPolicy(),
		logger:      logger,
	}
}

// Normalize converts one raw input into canonical content.
//
// Audio and video are transcribed; transient transcription failures are
// retried with bounded exponential backoff while quota and auth failures
// propagate immediately. Images pass through as a media descriptor paired
// with any caption. Text is the identity transform. An empty transcript is
// not an error: the pipeline still captures an empty note downstream.
func (n *Normalizer) Normalize(ctx context.Context, in RawInput) (valueobjects.CanonicalContent, error) {
	switch in.Kind {
	case valueobjects.InputAudio, valueobjects.InputVideo:
		if len(in.Payload) == 0 {
			return valueobjects.CanonicalContent{}, pkgerrors.NewValidationError("audio input requires payload bytes")
		}
		transcript, err := n.transcribe(ctx, in)
		if err != nil {
			return valueobjects.CanonicalContent{}, err
		}
		return valueobjects.NewCanonicalContent(transcript), nil

	case valueobjects.InputImage:
		if len(in.Payload) == 0 {
			return valueobjects.CanonicalContent{}, pkgerrors.NewValidationError("image input requires payload bytes")
		}
		media := valueobjects.NewMediaDescriptor(in.Payload, in.MediaType)
		return valueobjects.NewCanonicalContentWithMedia(in.Text, media), nil

	case valueobjects.InputText:
		return valueobjects.NewCanonicalContent(in.Text), nil

	default:
		return valueobjects.CanonicalContent{}, pkgerrors.NewValidationError("unknown input kind " + in.Kind.String())
	}
}

func (n *Normalizer) transcribe(ctx context.Context, in RawInput) (string, error) {
	filename := in.Filename
	if filename == "" {
		if in.Kind == valueobjects.InputVideo {
			filename = "capture.mp4"
		} else {
			filename = "capture.m4a"
		}
	}

	var transcript string
	err := retry.Do(ctx, n.policy, func() error {
		var callErr error
		transcript, callErr = n.transcriber.Transcribe(ctx, in.Payload, filename)
		if callErr != nil {
			n.logger.Warn("transcription attempt failed",
				zap.String("inputKind", in.Kind.String()),
				zap.Error(callErr),
			)
		}
		return callErr
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "transcription failed")
	}
	return transcript, nil
}
