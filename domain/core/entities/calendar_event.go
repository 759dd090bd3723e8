package entities

import (
	"time"

	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"
)

// CalendarEvent links an entry to the event created in the user's external
// calendar. At most one exists per entry, and only when the external
// creation succeeded. It is owned by its entry: deleting the entry must
// reconcile the external event rather than silently orphaning it, which is
// why the external identifier is kept here.
type CalendarEvent struct {
	entryID         valueobjects.EntryID
	externalEventID string
	title           string
	start           time.Time
	end             time.Time
	location        string
	smsSent         bool
	createdAt       time.Time
}

// NewCalendarEvent creates a calendar event record for an entry
func NewCalendarEvent(
	entryID valueobjects.EntryID,
	externalEventID string,
	title string,
	start, end time.Time,
	location string,
) (*CalendarEvent, error) {
	if entryID.IsZero() {
		return nil, pkgerrors.NewValidationError("calendar event requires an owning entry")
	}
	if externalEventID == "" {
		return nil, pkgerrors.NewValidationError("calendar event requires the external event identifier")
	}
	if start.After(end) {
		return nil, pkgerrors.NewValidationError("event start must not be after end")
	}
	return &CalendarEvent{
		entryID:         entryID,
		externalEventID: externalEventID,
		title:           title,
		start:           start,
		end:             end,
		location:        location,
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstructCalendarEvent rebuilds a calendar event from repository data
func ReconstructCalendarEvent(
	entryID valueobjects.EntryID,
	externalEventID, title string,
	start, end time.Time,
	location string,
	smsSent bool,
	createdAt time.Time,
) *CalendarEvent {
	return &CalendarEvent{
		entryID:         entryID,
		externalEventID: externalEventID,
		title:           title,
		start:           start,
		end:             end,
		location:        location,
		smsSent:         smsSent,
		createdAt:       createdAt,
	}
}

// EntryID returns the owning entry's identifier
func (c *CalendarEvent) EntryID() valueobjects.EntryID { return c.entryID }

// ExternalEventID returns the identifier assigned by the external calendar
func (c *CalendarEvent) ExternalEventID() string { return c.externalEventID }

// Title returns the event title
func (c *CalendarEvent) Title() string { return c.title }

// Start returns the event start time
func (c *CalendarEvent) Start() time.Time { return c.start }

// End returns the event end time
func (c *CalendarEvent) End() time.Time { return c.end }

// Location returns the event location, empty when unset
func (c *CalendarEvent) Location() string { return c.location }

// SMSSent reports whether the notification SMS went out
func (c *CalendarEvent) SMSSent() bool { return c.smsSent }

// CreatedAt returns the record creation timestamp
func (c *CalendarEvent) CreatedAt() time.Time { return c.createdAt }

// RecordSMSSent marks the notification SMS as delivered
func (c *CalendarEvent) RecordSMSSent() {
	c.smsSent = true
}
