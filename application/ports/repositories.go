package ports

import (
	"context"
	"encoding/json"
	"time"

	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
	"planner-backend/domain/events"
)

// EntryRepository persists entries and their linked calendar events
type EntryRepository interface {
	// Save persists an entry on its own
	Save(ctx context.Context, entry *entities.Entry) error

	// SaveWithCalendarEvent persists an entry and its linked calendar event
	// inside one transaction, so a partially created pair is never
	// observable
	SaveWithCalendarEvent(ctx context.Context, entry *entities.Entry, event *entities.CalendarEvent) error

	// GetByID loads a single entry
	GetByID(ctx context.Context, userID string, id valueobjects.EntryID) (*entities.Entry, error)

	// GetCalendarEvent loads the calendar event linked to an entry, nil
	// when none exists
	GetCalendarEvent(ctx context.Context, userID string, id valueobjects.EntryID) (*entities.CalendarEvent, error)

	// ListByWindow returns a user's entries created within [from, to),
	// ordered by creation time ascending
	ListByWindow(ctx context.Context, userID string, from, to time.Time) ([]*entities.Entry, error)
}

// UserRepository persists user records
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*entities.User, error)
	ListActive(ctx context.Context) ([]*entities.User, error)
	Save(ctx context.Context, user *entities.User) error
}

// IdempotencyKey identifies one logical dispatch attempt
type IdempotencyKey struct {
	UserID    string
	Operation string
	Hash      string
	CreatedAt time.Time
}

// IdempotencyStore records completed dispatch results so duplicate
// submissions replay the prior result instead of re-running side effects.
// Store must be conditional: under concurrent duplicates only the first
// write wins and the rest are silently absorbed.
type IdempotencyStore interface {
	Get(ctx context.Context, key IdempotencyKey) (json.RawMessage, bool, error)
	Store(ctx context.Context, key IdempotencyKey, result interface{}) error
}

// DigestRecord is the persisted outcome of one user-day digest run
type DigestRecord struct {
	UserID     string    `json:"user_id"`
	Day        string    `json:"day"` // yyyy-mm-dd in the user's timezone
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	EntryCount int       `json:"entry_count"`
	Summarized bool      `json:"summarized"`
	SentAt     time.Time `json:"sent_at"`
}

// DigestStore is the per-user-day send marker. Claim doubles as the
// singleton lock: it atomically creates the marker, and a second claim for
// the same user-day fails and hands back whatever the first run recorded.
type DigestStore interface {
	// Claim attempts to take ownership of the user-day. It returns
	// claimed=false with the prior record when the day was already
	// claimed or completed.
	Claim(ctx context.Context, userID, day string) (claimed bool, prior *DigestRecord, err error)

	// Complete stores the finished digest result under the claimed marker
	Complete(ctx context.Context, record *DigestRecord) error

	// Release abandons a claim after a failed run so a later trigger can
	// retry the day
	Release(ctx context.Context, userID, day string) error
}

// EventBus publishes domain events to downstream consumers
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}
