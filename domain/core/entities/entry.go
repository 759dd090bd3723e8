package entities

import (
	"time"

	"planner-backend/domain/core/valueobjects"
	"planner-backend/domain/events"
	pkgerrors "planner-backend/pkg/errors"
)

// EntryStatus represents the lifecycle state of an entry
type EntryStatus string

const (
	StatusPending   EntryStatus = "pending"
	StatusProcessed EntryStatus = "processed"
	StatusFailed    EntryStatus = "failed"
)

// Entry is the universal capture record: every accepted input becomes
// exactly one Entry regardless of which module handled it. Once an entry
// reaches processed or failed it is immutable; a failed entry still carries
// whatever canonical content was extracted so nothing captured is lost.
type Entry struct {
	id        valueobjects.EntryID
	userID    string
	inputKind valueobjects.InputKind
	kind      valueobjects.ModuleKind
	content   valueobjects.CanonicalContent
	title     string
	payload   valueobjects.Payload
	status    EntryStatus
	failure   string
	createdAt time.Time

	events []events.DomainEvent
}

// NewEntryDraft creates a pending entry awaiting module handling
func NewEntryDraft(
	userID string,
	inputKind valueobjects.InputKind,
	kind valueobjects.ModuleKind,
	content valueobjects.CanonicalContent,
	title string,
	payload valueobjects.Payload,
) (*Entry, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.NewValidationError("module kind is not a taxonomy member")
	}

	return &Entry{
		id:        valueobjects.NewEntryID(),
		userID:    userID,
		inputKind: inputKind,
		kind:      kind,
		content:   content,
		title:     title,
		payload:   payload,
		status:    StatusPending,
		createdAt: time.Now().UTC(),
		events:    []events.DomainEvent{},
	}, nil
}

// ReconstructEntry rebuilds an entry from repository data with preserved
// timestamps and status
func ReconstructEntry(
	id valueobjects.EntryID,
	userID string,
	inputKind valueobjects.InputKind,
	kind valueobjects.ModuleKind,
	content valueobjects.CanonicalContent,
	title string,
	payload valueobjects.Payload,
	status EntryStatus,
	failure string,
	createdAt time.Time,
) (*Entry, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	return &Entry{
		id:        id,
		userID:    userID,
		inputKind: inputKind,
		kind:      kind,
		content:   content,
		title:     title,
		payload:   payload,
		status:    status,
		failure:   failure,
		createdAt: createdAt,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the entry's unique identifier
func (e *Entry) ID() valueobjects.EntryID { return e.id }

// UserID returns the owner's ID
func (e *Entry) UserID() string { return e.userID }

// InputKind returns the declared media kind of the original input
func (e *Entry) InputKind() valueobjects.InputKind { return e.inputKind }

// Kind returns the module kind that owns this entry
func (e *Entry) Kind() valueobjects.ModuleKind { return e.kind }

// Content returns the canonical content
func (e *Entry) Content() valueobjects.CanonicalContent { return e.content }

// Title returns the short display title
func (e *Entry) Title() string { return e.title }

// Payload returns the module-kind-specific structured fields
func (e *Entry) Payload() valueobjects.Payload { return e.payload }

// Status returns the entry's lifecycle state
func (e *Entry) Status() EntryStatus { return e.status }

// FailureReason returns why the entry failed, empty otherwise
func (e *Entry) FailureReason() string { return e.failure }

// CreatedAt returns the creation timestamp
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

// MarkProcessed transitions a pending entry to processed. The structured
// payload must validate against the schema for the entry's module kind
// first: a mismatch is fatal for the request, never coerced.
func (e *Entry) MarkProcessed() error {
	if e.status != StatusPending {
		return pkgerrors.NewValidationError("entry is immutable once " + string(e.status))
	}
	if err := valueobjects.ValidatePayload(e.kind, e.payload); err != nil {
		return err
	}
	e.status = StatusProcessed
	e.addEvent(events.NewEntryCaptured(
		e.id.String(), e.userID, e.kind.String(), string(StatusProcessed), time.Now().UTC(),
	))
	return nil
}

// MarkFailed transitions a pending entry to failed while retaining its
// canonical content and payload
func (e *Entry) MarkFailed(reason string) error {
	if e.status != StatusPending {
		return pkgerrors.NewValidationError("entry is immutable once " + string(e.status))
	}
	e.status = StatusFailed
	e.failure = reason
	e.addEvent(events.NewEntryCaptured(
		e.id.String(), e.userID, e.kind.String(), string(StatusFailed), time.Now().UTC(),
	))
	return nil
}

// GetUncommittedEvents returns events raised since the last commit
func (e *Entry) GetUncommittedEvents() []events.DomainEvent {
	return e.events
}

// MarkEventsAsCommitted clears the uncommitted event list
func (e *Entry) MarkEventsAsCommitted() {
	e.events = []events.DomainEvent{}
}

func (e *Entry) addEvent(event events.DomainEvent) {
	e.events = append(e.events, event)
}
