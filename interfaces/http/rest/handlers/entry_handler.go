package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"planner-backend/application/ports"
	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
	"planner-backend/interfaces/http/rest/middleware"
	"planner-backend/pkg/common"
	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/pkg/utils"
)

// EntryHandler serves read access to captured entries
type EntryHandler struct {
	entries ports.EntryRepository
	logger  *zap.Logger
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entries ports.EntryRepository, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{
		entries: entries,
		logger:  logger,
	}
}

// entryResponse is the wire shape of one entry
type entryResponse struct {
	EntryID       string                 `json:"entry_id"`
	InputKind     string                 `json:"input_kind"`
	ModuleKind    string                 `json:"module_kind"`
	Content       string                 `json:"content"`
	Title         string                 `json:"title,omitempty"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	Status        string                 `json:"status"`
	FailureReason string                 `json:"failure_reason,omitempty"`
	CreatedAt     string                 `json:"created_at"`
}

// calendarEventResponse is the wire shape of an entry's linked event
type calendarEventResponse struct {
	ExternalEventID string `json:"external_event_id"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end"`
	Location        string `json:"location,omitempty"`
	SMSSent         bool   `json:"sms_sent"`
}

func toEntryResponse(entry *entities.Entry) entryResponse {
	return entryResponse{
		EntryID:       entry.ID().String(),
		InputKind:     string(entry.InputKind()),
		ModuleKind:    string(entry.Kind()),
		Content:       entry.Content().Text(),
		Title:         entry.Title(),
		Payload:       entry.Payload(),
		Status:        string(entry.Status()),
		FailureReason: entry.FailureReason(),
		CreatedAt:     entry.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
}

// GetEntry handles GET /api/v1/entries/{entryID}
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondAppError(w, pkgerrors.NewUnauthorizedError(""))
		return
	}

	id, err := valueobjects.NewEntryIDFromString(chi.URLParam(r, "entryID"))
	if err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("invalid entry id"))
		return
	}

	entry, err := h.entries.GetByID(r.Context(), user.ID(), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	resp := struct {
		Entry         entryResponse          `json:"entry"`
		CalendarEvent *calendarEventResponse `json:"calendar_event,omitempty"`
	}{Entry: toEntryResponse(entry)}

	if entry.Kind() == valueobjects.KindCalendar {
		event, err := h.entries.GetCalendarEvent(r.Context(), user.ID(), id)
		if err != nil {
			h.logger.Warn("failed to load linked calendar event",
				zap.String("entry_id", id.String()),
				zap.Error(err),
			)
		} else if event != nil {
			resp.CalendarEvent = &calendarEventResponse{
				ExternalEventID: event.ExternalEventID(),
				Title:           event.Title(),
				Start:           event.Start().UTC().Format(time.RFC3339),
				End:             event.End().UTC().Format(time.RFC3339),
				Location:        event.Location(),
				SMSSent:         event.SMSSent(),
			}
		}
	}

	common.RespondJSON(w, http.StatusOK, resp)
}

// ListEntries handles GET /api/v1/entries?day=2026-08-29. The day is
// interpreted in the user's timezone and defaults to today.
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondAppError(w, pkgerrors.NewUnauthorizedError(""))
		return
	}

	loc := user.Location()
	ref := time.Now().In(loc)
	if day := r.URL.Query().Get("day"); day != "" {
		parsed, err := time.ParseInLocation("2006-01-02", day, loc)
		if err != nil {
			common.RespondAppError(w, pkgerrors.NewValidationError("day must be formatted as yyyy-mm-dd"))
			return
		}
		ref = parsed
	}

	from, to := utils.DayWindow(ref, loc)
	entries, err := h.entries.ListByWindow(r.Context(), user.ID(), from, to)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	items := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toEntryResponse(entry))
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"day":     utils.DayKey(ref, loc),
		"entries": items,
	})
}
