package modules

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
	"planner-backend/domain/events"
	pkgerrors "planner-backend/pkg/errors"
)

// CalendarHandler creates an external calendar event for the entry and
// texts the user's notification contact. The entry is persisted on every
// path: processed with a linked CalendarEvent on success, failed with the
// original content retained when the external call does not go through.
type CalendarHandler struct {
	entries  ports.EntryRepository
	calendar ports.CalendarService
	sms      ports.SMSSender
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewCalendarHandler creates the calendar module handler
func NewCalendarHandler(
	entries ports.EntryRepository,
	calendar ports.CalendarService,
	sms ports.SMSSender,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *CalendarHandler {
	return &CalendarHandler{
		entries:  entries,
		calendar: calendar,
		sms:      sms,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Handle runs the calendar module for one draft
func (h *CalendarHandler) Handle(ctx context.Context, draft Draft) (*HandleResult, error) {
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

	// Temporal fields are validated before any external call is attempted.
	// An incomplete payload still captures the note; only the event is
	// skipped.
	payload, perr := validCalendarPayload(draft.Fields)
	if perr != nil {
		return h.persistFailed(ctx, entry, perr,
			"I saved your note, but couldn't create the calendar event — the event time details were incomplete.")
	}

	start, _ := valueobjects.ParseEventTime(payload.Start)
	end, _ := valueobjects.ParseEventTime(payload.End)

	externalID, cerr := h.calendar.CreateEvent(ctx, draft.User.ID(), ports.EventDetails{
		Title:       payload.Title,
		Start:       start,
		End:         end,
		Location:    payload.Location,
		Description: "Captured by planner: " + draft.Content.Text(),
	})
	if cerr != nil {
		return h.persistFailed(ctx, entry, cerr, calendarFailureConfirmation(cerr, payload.Title))
	}

	calEvent, err := entities.NewCalendarEvent(entry.ID(), externalID, payload.Title, start, end, payload.Location)
	if err != nil {
		return nil, err
	}

	if err := entry.MarkProcessed(); err != nil {
		return nil, err
	}

	// One transaction: a partially created entry/event pair is never
	// observable. If the write fails after the external event was already
	// created, that event is orphaned on the external calendar and a
	// client retry will create a second one. The external id is logged so
	// orphans can be reconciled against the calendar.
	if err := h.entries.SaveWithCalendarEvent(ctx, entry, calEvent); err != nil {
		h.logger.Error("entry write failed after external event creation",
			zap.String("entry_id", entry.ID().String()),
			zap.String("external_event_id", externalID),
			zap.Error(err),
		)
		return nil, pkgerrors.Wrap(err, "failed to persist entry with calendar event")
	}

	h.notifyContact(ctx, draft.User, payload, calEvent)
	h.publishEvents(ctx, entry, calEvent, draft.User.ID())

	confirmation := draft.SpokenResponse
	if confirmation == "" {
		confirmation = fmt.Sprintf("Created %q on your calendar.", payload.Title)
	}

	return &HandleResult{
		Entry:         entry,
		CalendarEvent: calEvent,
		Confirmation:  confirmation,
	}, nil
}

// persistFailed saves the entry as failed with its content retained and
// reports the degraded outcome through the confirmation, not an error.
func (h *CalendarHandler) persistFailed(ctx context.Context, entry *entities.Entry, cause error, confirmation string) (*HandleResult, error) {
	if err := entry.MarkFailed(cause.Error()); err != nil {
		return nil, err
	}
	if err := h.entries.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to persist failed entry")
	}
	h.publishEvents(ctx, entry, nil, entry.UserID())

	failureKind := ""
	var appErr *pkgerrors.AppError
	if errors.As(cause, &appErr) {
		failureKind = string(appErr.Type)
	}

	return &HandleResult{
		Entry:        entry,
		Confirmation: confirmation,
		FailureKind:  failureKind,
	}, nil
}

// notifyContact texts the user's notification contact about the new event.
// Fire-and-forget: failures are logged and never alter the entry status or
// the confirmation text.
func (h *CalendarHandler) notifyContact(ctx context.Context, user *entities.User, payload valueobjects.CalendarPayload, calEvent *entities.CalendarEvent) {
	to := user.SMSContact()
	if to == "" {
		return
	}

	body := fmt.Sprintf("New event: %s\nWhen: %s", payload.Title, payload.Start)
	if payload.Location != "" {
		body += "\nWhere: " + payload.Location
	}

	if _, err := h.sms.SendSMS(ctx, to, body); err != nil {
		h.logger.Warn("calendar notification SMS failed",
			zap.String("entryID", calEvent.EntryID().String()),
			zap.Error(err),
		)
		return
	}
	calEvent.RecordSMSSent()
}

func (h *CalendarHandler) publishEvents(ctx context.Context, entry *entities.Entry, calEvent *entities.CalendarEvent, userID string) {
	batch := entry.GetUncommittedEvents()
	if calEvent != nil {
		batch = append(batch, events.NewCalendarEventCreated(
			entry.ID().String(), userID, calEvent.ExternalEventID(),
			calEvent.Start(), calEvent.End(), calEvent.CreatedAt(),
		))
	}
	if err := h.eventBus.PublishBatch(ctx, batch); err != nil {
		h.logger.Warn("failed to publish calendar entry events",
			zap.String("entryID", entry.ID().String()),
			zap.Error(err),
		)
	}
	entry.MarkEventsAsCommitted()
}

// validCalendarPayload decodes and validates the calendar schema
func validCalendarPayload(fields valueobjects.Payload) (valueobjects.CalendarPayload, error) {
	payload, err := valueobjects.DecodeCalendarPayload(fields)
	if err != nil {
		return valueobjects.CalendarPayload{}, err
	}
	if err := payload.Validate(); err != nil {
		return valueobjects.CalendarPayload{}, err
	}
	return payload, nil
}

// calendarFailureConfirmation tells the user their note survived even
// though the external event did not get created
func calendarFailureConfirmation(err error, title string) string {
	switch {
	case pkgerrors.IsAuthExpired(err):
		return fmt.Sprintf("I saved your note about %q, but your calendar connection has expired — please reconnect it and try again.", title)
	case pkgerrors.IsQuota(err), pkgerrors.IsType(err, pkgerrors.ErrorTypeRateLimit):
		return fmt.Sprintf("I saved your note about %q, but the calendar service is refusing requests right now. Please check your calendar later.", title)
	default:
		return fmt.Sprintf("I saved your note about %q, but couldn't reach your calendar to create the event. Please double-check your calendar.", title)
	}
}
