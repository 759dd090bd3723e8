package valueobjects

import (
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "planner-backend/pkg/errors"
	"planner-backend/pkg/utils"
)

// Payload holds the module-kind-specific structured fields extracted by the
// classifier. The schema it must satisfy is determined by the module kind.
type Payload map[string]interface{}

// CalendarPayload is the schema for calendar entries
type CalendarPayload struct {
	Title    string `json:"title" validate:"required"`
	Start    string `json:"start" validate:"required"`
	End      string `json:"end" validate:"required"`
	Location string `json:"location,omitempty"`
}

// MoodPayload is the schema for mood entries
type MoodPayload struct {
	Rating   int      `json:"rating,omitempty" validate:"omitempty,gte=1,lte=10"`
	Triggers []string `json:"triggers,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// ExpensePayload is the schema for expense entries
type ExpensePayload struct {
	Amount   float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Currency string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Category string  `json:"category,omitempty"`
	Vendor   string  `json:"vendor,omitempty"`
}

// eventTimeLayouts are the formats the classifier is allowed to emit for
// calendar start/end times.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseEventTime parses a classifier-supplied event time
func ParseEventTime(value string) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, pkgerrors.NewValidationError(fmt.Sprintf("unrecognized event time %q", value))
}

// Validate checks the calendar payload's temporal invariants beyond tag
// validation: both times must parse and start must not follow end.
func (p CalendarPayload) Validate() error {
	if err := utils.ValidateStruct(p); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	start, err := ParseEventTime(p.Start)
	if err != nil {
		return err
	}
	end, err := ParseEventTime(p.End)
	if err != nil {
		return err
	}
	if start.After(end) {
		return pkgerrors.NewValidationError("event start must not be after end")
	}
	return nil
}

// ValidatePayload validates a raw payload against the schema for its module
// kind. A mismatch is a ValidationError, never a silent coercion. Kinds
// without required fields (the generic family) accept any payload,
// including nil.
func ValidatePayload(kind ModuleKind, payload Payload) error {
	switch kind {
	case KindCalendar:
		var p CalendarPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		return p.Validate()
	case KindMood:
		var p MoodPayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		if err := utils.ValidateStruct(p); err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
		return nil
	case KindExpense:
		var p ExpensePayload
		if err := decodePayload(payload, &p); err != nil {
			return err
		}
		if err := utils.ValidateStruct(p); err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
		return nil
	default:
		// memo, diary, idea, screenshot_note and the planned-but-stub kinds
		// have no required fields: the generic handler must never fail on
		// schema grounds.
		return nil
	}
}

// DecodeCalendarPayload extracts a typed calendar payload from raw fields
func DecodeCalendarPayload(payload Payload) (CalendarPayload, error) {
	var p CalendarPayload
	if err := decodePayload(payload, &p); err != nil {
		return CalendarPayload{}, err
	}
	return p, nil
}

// decodePayload round-trips a raw payload into a typed schema struct
func decodePayload(payload Payload, target interface{}) error {
	if payload == nil {
		payload = Payload{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.NewValidationError("payload is not serializable")
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return pkgerrors.NewValidationError("payload does not match module schema: " + err.Error())
	}
	return nil
}
