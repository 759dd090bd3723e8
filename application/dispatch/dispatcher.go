package dispatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"planner-backend/application/classification"
	"planner-backend/application/ingestion"
	"planner-backend/application/modules"
	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"
)

// OperationDispatch labels idempotency records written by the dispatcher
const OperationDispatch = "DISPATCH_INPUT"

// arrivalBucket is the window within which an identical submission from
// the same user counts as a retry of the same capture rather than a new
// one. A genuine re-capture of the same words later in the day lands in a
// different bucket and is processed again.
const arrivalBucket = 5 * time.Minute

// Result is what the caller speaks back to the user. Every dispatch
// produces one, including degraded and failed outcomes.
type Result struct {
	EntryID        string `json:"entry_id,omitempty"`
	ModuleKind     string `json:"module_kind,omitempty"`
	Status         string `json:"status"`
	SpokenResponse string `json:"spoken_response"`
	FailureKind    string `json:"failure_kind,omitempty"`
	Replayed       bool   `json:"-"` // true when served from the idempotency store
}

// Dispatcher runs the full capture pipeline: normalize, classify, route
// to the owning module handler, and compose the spoken confirmation. It
// deduplicates rapid identical submissions so handler side effects run at
// most once per logical capture.
type Dispatcher struct {
	normalizer  *ingestion.Normalizer
	classifier  *classification.Service
	registry    *Registry
	idempotency ports.IdempotencyStore
	logger      *zap.Logger
	now         func() time.Time
}

// NewDispatcher creates a dispatcher
func NewDispatcher(
	normalizer *ingestion.Normalizer,
	classifier *classification.Service,
	registry *Registry,
	idempotency ports.IdempotencyStore,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		normalizer:  normalizer,
		classifier:  classifier,
		registry:    registry,
		idempotency: idempotency,
		logger:      logger,
		now:         time.Now,
	}
}

// Dispatch processes one raw input for a user. The error return is
// reserved for failures before any capture exists (normalization failure,
// idempotency store outage); once content is in hand the pipeline always
// yields a Result with a spoken confirmation, degraded or not.
func (d *Dispatcher) Dispatch(ctx context.Context, user *entities.User, in ingestion.RawInput) (*Result, error) {
	if user == nil {
		return nil, fmt.Errorf("dispatch requires a user")
	}

	content, err := d.normalizer.Normalize(ctx, in)
	if err != nil {
		return nil, err
	}

	arrivedAt := d.now().UTC()
	key := d.idempotencyKey(user.ID(), content, arrivedAt)

	if cached, found, err := d.idempotency.Get(ctx, key); err != nil {
		return nil, err
	} else if found {
		var prior Result
		if err := json.Unmarshal(cached, &prior); err == nil {
			prior.Replayed = true
			d.logger.Info("duplicate submission replayed",
				zap.String("user_id", user.ID()),
				zap.String("entry_id", prior.EntryID),
			)
			return &prior, nil
		}
		// An undecodable record means an older schema; reprocessing is
		// safer than replaying garbage.
		d.logger.Warn("discarding unreadable idempotency record",
			zap.String("user_id", user.ID()),
		)
	}

	classified, err := d.classifier.Classify(ctx, content)
	if err != nil {
		return nil, err
	}

	handler, isStub := d.registry.Resolve(classified.Kind)

	draft := modules.Draft{
		User:           user,
		InputKind:      in.Kind,
		Kind:           classified.Kind,
		Content:        content,
		Title:          classified.Title,
		Fields:         classified.Fields,
		SpokenResponse: classified.SpokenResponse,
	}

	handled, err := handler.Handle(ctx, draft)
	if err != nil {
		// Persistence is down. Nothing durable exists, so no idempotency
		// record is written either: the user should retry and the retry
		// should run for real.
		d.logger.Error("module handler failed",
			zap.String("user_id", user.ID()),
			zap.String("module_kind", string(classified.Kind)),
			zap.Error(err),
		)
		return &Result{
			Status:         string(entities.StatusFailed),
			SpokenResponse: persistenceApology,
			FailureKind:    failureKindOf(err),
		}, nil
	}

	result := &Result{
		EntryID:        handled.Entry.ID().String(),
		ModuleKind:     string(classified.Kind),
		Status:         string(handled.Entry.Status()),
		SpokenResponse: composeConfirmation(handled.Confirmation, classified.Kind, isStub),
		FailureKind:    handled.FailureKind,
	}

	// Degraded outcomes (entry persisted as failed) are recorded too: a
	// retry of the same capture must not re-run the external side effect
	// that just failed, it replays the explanation.
	if err := d.idempotency.Store(ctx, key, result); err != nil {
		d.logger.Warn("failed to store idempotency record",
			zap.String("user_id", user.ID()),
			zap.String("entry_id", result.EntryID),
			zap.Error(err),
		)
	}

	return result, nil
}

func failureKindOf(err error) string {
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Type)
	}
	return string(pkgerrors.ErrorTypeInternal)
}

// idempotencyKey derives the dedup key from who sent it, what it says,
// and roughly when it arrived.
func (d *Dispatcher) idempotencyKey(userID string, content valueobjects.CanonicalContent, arrivedAt time.Time) ports.IdempotencyKey {
	bucket := arrivedAt.Truncate(arrivalBucket)
	sum := sha256.Sum256([]byte(userID + "|" + content.Hash() + "|" + bucket.Format(time.RFC3339)))
	return ports.IdempotencyKey{
		UserID:    userID,
		Operation: OperationDispatch,
		Hash:      hex.EncodeToString(sum[:]),
		CreatedAt: arrivedAt,
	}
}
