package events

import (
	"time"
)

// SourcePlanner is the EventBridge source attribute for all planner events
const SourcePlanner = "planner.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// EntryCaptured is raised when an entry is persisted, whether it ended up
// processed or failed. Downstream consumers (dashboards, notifiers) key off
// Status to distinguish the two.
type EntryCaptured struct {
	BaseEvent
	EntryID    string `json:"entry_id"`
	UserID     string `json:"user_id"`
	ModuleKind string `json:"module_kind"`
	Status     string `json:"status"`
}

// NewEntryCaptured creates an EntryCaptured event
func NewEntryCaptured(entryID, userID, moduleKind, status string, timestamp time.Time) EntryCaptured {
	return EntryCaptured{
		BaseEvent: BaseEvent{
			AggregateID: entryID,
			EventType:   "entry.captured",
			Timestamp:   timestamp,
			Version:     1,
		},
		EntryID:    entryID,
		UserID:     userID,
		ModuleKind: moduleKind,
		Status:     status,
	}
}

// CalendarEventCreated is raised when the external calendar event for an
// entry has been created successfully
type CalendarEventCreated struct {
	BaseEvent
	EntryID         string    `json:"entry_id"`
	UserID          string    `json:"user_id"`
	ExternalEventID string    `json:"external_event_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
}

// NewCalendarEventCreated creates a CalendarEventCreated event
func NewCalendarEventCreated(entryID, userID, externalEventID string, start, end, timestamp time.Time) CalendarEventCreated {
	return CalendarEventCreated{
		BaseEvent: BaseEvent{
			AggregateID: entryID,
			EventType:   "calendar.event_created",
			Timestamp:   timestamp,
			Version:     1,
		},
		EntryID:         entryID,
		UserID:          userID,
		ExternalEventID: externalEventID,
		Start:           start,
		End:             end,
	}
}

// DigestSent is raised when a daily digest email has been delivered
type DigestSent struct {
	BaseEvent
	UserID     string `json:"user_id"`
	Day        string `json:"day"` // yyyy-mm-dd in the user's timezone
	EntryCount int    `json:"entry_count"`
	Summarized bool   `json:"summarized"` // false when the plain-listing fallback was used
}

// NewDigestSent creates a DigestSent event
func NewDigestSent(userID, day string, entryCount int, summarized bool, timestamp time.Time) DigestSent {
	return DigestSent{
		BaseEvent: BaseEvent{
			AggregateID: userID + "#" + day,
			EventType:   "digest.sent",
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID:     userID,
		Day:        day,
		EntryCount: entryCount,
		Summarized: summarized,
	}
}
