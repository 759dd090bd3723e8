package modules

import (
	"context"

	"go.uber.org/zap"

	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	pkgerrors "planner-backend/pkg/errors"
)

// GenericHandler is the safety net covering memo, diary, mood, idea,
// expense, screenshot notes and the fallback path for any kind without a
// dedicated handler. It persists the canonical content and whatever fields
// were extracted, as-is, under the classified kind. Short of a storage
// failure it always succeeds: none of its schemas have required fields.
type GenericHandler struct {
	entries  ports.EntryRepository
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewGenericHandler creates the generic handler
func NewGenericHandler(entries ports.EntryRepository, eventBus ports.EventBus, logger *zap.Logger) *GenericHandler {
	return &GenericHandler{
		entries:  entries,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Handle persists the draft and returns a short acknowledgement
func (h *GenericHandler) Handle(ctx context.Context, draft Draft) (*HandleResult, error) {
	entry, err := entities.NewEntryDraft(
		draft.User.ID(),
		draft.InputKind,
		draft.Kind,
		draft.Content,
		draft.Title,
		draft.Fields,
	)
	if err != nil {
		return nil, err
	}

	if err := entry.MarkProcessed(); err != nil {
		return nil, err
	}

	if err := h.entries.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to persist entry")
	}

	h.publishEvents(ctx, entry)

	return &HandleResult{
		Entry:        entry,
		Confirmation: h.confirmation(draft),
	}, nil
}

func (h *GenericHandler) confirmation(draft Draft) string {
	if draft.SpokenResponse != "" {
		return draft.SpokenResponse
	}
	if draft.Content.IsEmpty() {
		return "Saved an empty note."
	}
	switch draft.Kind {
	case "mood":
		return "Noted how you're feeling."
	case "diary":
		return "Saved your diary entry."
	case "idea":
		return "Captured your idea."
	case "expense":
		return "Logged the expense."
	default:
		return "Got it — saved your note."
	}
}

// publishEvents is fire-and-forget: event delivery never affects the
// capture outcome
func (h *GenericHandler) publishEvents(ctx context.Context, entry *entities.Entry) {
	if err := h.eventBus.PublishBatch(ctx, entry.GetUncommittedEvents()); err != nil {
		h.logger.Warn("failed to publish entry events",
			zap.String("entryID", entry.ID().String()),
			zap.Error(err),
		)
	}
	entry.MarkEventsAsCommitted()
}
