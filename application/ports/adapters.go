package ports

import (
	"context"
	"time"

	"planner-backend/domain/core/valueobjects"
)

// Transcriber converts captured audio (or a video's audio track) to text.
// Implementations classify failures: transient transport errors are
// retryable, quota exhaustion fails fast.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Classification is the structured verdict of one classification attempt
type Classification struct {
	ModuleKind     string               // raw value, validated against the taxonomy by the caller
	Title          string               // short display title
	SpokenResponse string               // suggested confirmation phrasing
	Fields         valueobjects.Payload // module-kind-specific structured fields
	Confidence     float64              // 0..1; below threshold the caller falls back to generic
}

// IntentClassifier maps canonical content to a module kind plus extracted
// fields. Exactly one logical classification attempt is made per input;
// ambiguity is resolved by fallback, not by re-querying.
type IntentClassifier interface {
	Classify(ctx context.Context, content valueobjects.CanonicalContent, taxonomy []string, now time.Time, timezone string) (Classification, error)
}

// EventDetails describes the external calendar event to create
type EventDetails struct {
	Title       string
	Start       time.Time
	End         time.Time
	Location    string
	Description string
}

// CalendarService creates events in the user's external calendar and
// returns the external event identifier. Auth-expired, rate-limited and
// transient failures surface as distinct error types.
type CalendarService interface {
	CreateEvent(ctx context.Context, userID string, details EventDetails) (string, error)
}

// SMSSender delivers a text message and returns the provider message ID.
// Callers treat failures as log-only; they never affect entry status.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// EmailSender delivers an HTML email
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// DigestLine is one entry's contribution to the digest input
type DigestLine struct {
	Time    time.Time
	Title   string
	Snippet string
}

// GroupedEntries is a day's entries grouped by module kind
type GroupedEntries map[valueobjects.ModuleKind][]DigestLine

// Summarizer turns a day of grouped entries into a narrative digest body.
// On failure the aggregator falls back to a plain listing.
type Summarizer interface {
	Summarize(ctx context.Context, userName string, day string, grouped GroupedEntries) (string, error)
}
