// Package classification maps canonical content onto the closed module
// taxonomy. Whatever the adapter returns, the result presented to the
// dispatcher is always a taxonomy member: anything unknown, malformed or
// low-confidence collapses deterministically to the fallback kind.
package classification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"planner-backend/application/ports"
	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/pkg/retry"
)

// DefaultMinConfidence is the floor under which a classification is
// treated as ambiguous and routed to the fallback kind.
const DefaultMinConfidence = 0.4

// Result is the pipeline-facing outcome of classification
type Result struct {
	Kind           valueobjects.ModuleKind
	Title          string
	SpokenResponse string
	Fields         valueobjects.Payload
	Confidence     float64
	FellBack       bool // true when the fallback kind was substituted
}

// FallbackRecorder counts classifications that collapsed to the fallback
// kind, keyed by the reason for the collapse
type FallbackRecorder interface {
	RecordClassificationFallback(ctx context.Context, reason string)
}

// Service wraps the classification adapter with taxonomy enforcement
type Service struct {
	adapter       ports.IntentClassifier
	policy        retry.Policy
	minConfidence float64
	timezone      string
	metrics       FallbackRecorder
	logger        *zap.Logger
}

// NewService creates a classification service. timezone is the reference
// zone handed to the adapter for resolving relative dates; a non-positive
// minConfidence selects the default floor. metrics may be nil.
func NewService(adapter ports.IntentClassifier, timezone string, minConfidence float64, metrics FallbackRecorder, logger *zap.Logger) *Service {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Service{
		adapter:       adapter,
		policy:        retry.DefaultPolicy(),
		minConfidence: minConfidence,
		timezone:      timezone,
		metrics:       metrics,
		logger:        logger,
	}
}

// Classify makes exactly one logical classification attempt for the
// content. Transport errors are retried with backoff inside that attempt;
// ambiguity is never resolved by re-querying. Empty content short-circuits
// to the fallback kind without an adapter call.
func (s *Service) Classify(ctx context.Context, content valueobjects.CanonicalContent) (Result, error) {
	if content.IsEmpty() {
		s.recordFallback(ctx, "empty_content")
		return Result{
			Kind:     valueobjects.FallbackKind,
			Title:    "Empty note",
			FellBack: true,
		}, nil
	}

	var c ports.Classification
	err := retry.Do(ctx, s.policy, func() error {
		var callErr error
		c, callErr = s.adapter.Classify(ctx, content, valueobjects.TaxonomyStrings(), time.Now().UTC(), s.timezone)
		if callErr != nil {
			s.logger.Warn("classification attempt failed", zap.Error(callErr))
		}
		return callErr
	})
	if err != nil {
		// Retries exhausted. The capture must still land somewhere rather
		// than be dropped, so the content is routed to the fallback kind
		// with no extracted fields.
		s.logger.Error("classification failed, routing to fallback kind",
			zap.Error(pkgerrors.Wrap(err, "classification failed")),
		)
		s.recordFallback(ctx, "retries_exhausted")
		return Result{
			Kind:     valueobjects.FallbackKind,
			Title:    titleFrom(content),
			FellBack: true,
		}, nil
	}

	kind := valueobjects.ParseModuleKind(c.ModuleKind)
	fellBack := kind.String() != c.ModuleKind
	fallbackReason := ""
	if fellBack {
		fallbackReason = "unknown_kind"
	}

	if c.Confidence < s.minConfidence {
		s.logger.Info("low classification confidence, using fallback kind",
			zap.String("returnedKind", c.ModuleKind),
			zap.Float64("confidence", c.Confidence),
		)
		kind = valueobjects.FallbackKind
		if !fellBack {
			fallbackReason = "low_confidence"
		}
		fellBack = true
	}

	// A verdict that parses but does not satisfy its kind's schema is
	// treated as low confidence, not as a request failure.
	if !fellBack {
		if verr := valueobjects.ValidatePayload(kind, c.Fields); verr != nil {
			s.logger.Info("classifier fields failed schema validation, using fallback kind",
				zap.String("kind", kind.String()),
				zap.Error(verr),
			)
			kind = valueobjects.FallbackKind
			fellBack = true
			fallbackReason = "invalid_fields"
		}
	}

	if fellBack {
		s.recordFallback(ctx, fallbackReason)
	}

	title := c.Title
	if title == "" {
		title = titleFrom(content)
	}

	return Result{
		Kind:           kind,
		Title:          title,
		SpokenResponse: c.SpokenResponse,
		Fields:         c.Fields,
		Confidence:     c.Confidence,
		FellBack:       fellBack,
	}, nil
}

func (s *Service) recordFallback(ctx context.Context, reason string) {
	if s.metrics != nil {
		s.metrics.RecordClassificationFallback(ctx, reason)
	}
}

// titleFrom derives a short display title from content text
func titleFrom(content valueobjects.CanonicalContent) string {
	text := content.Text()
	if text == "" {
		if content.HasMedia() {
			return "Captured image"
		}
		return "Untitled"
	}
	const max = 50
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
