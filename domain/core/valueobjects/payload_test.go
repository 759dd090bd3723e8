package valueobjects_test

import (
	"testing"
	"time"

	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventTime_AcceptedLayouts(t *testing.T) {
	cases := []string{
		"2026-08-29T14:00:00Z",
		"2026-08-29T14:00:00-04:00",
		"2026-08-29T14:00:00",
		"2026-08-29T14:00",
	}
	for _, raw := range cases {
		parsed, err := valueobjects.ParseEventTime(raw)
		require.NoError(t, err, "layout %q", raw)
		assert.Equal(t, 14, parsed.Hour())
	}
}

func TestParseEventTime_RejectsUnknownFormat(t *testing.T) {
	_, err := valueobjects.ParseEventTime("tomorrow at noon")

	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestCalendarPayload_Validate(t *testing.T) {
	payload := valueobjects.CalendarPayload{
		Title: "Dentist",
		Start: "2026-08-29T14:00:00Z",
		End:   "2026-08-29T15:00:00Z",
	}

	assert.NoError(t, payload.Validate())
}

func TestCalendarPayload_Validate_MissingEnd(t *testing.T) {
	payload := valueobjects.CalendarPayload{
		Title: "Dentist",
		Start: "2026-08-29T14:00:00Z",
	}

	err := payload.Validate()
	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestCalendarPayload_Validate_StartAfterEnd(t *testing.T) {
	payload := valueobjects.CalendarPayload{
		Title: "Dentist",
		Start: "2026-08-29T16:00:00Z",
		End:   "2026-08-29T15:00:00Z",
	}

	err := payload.Validate()
	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestValidatePayload_CalendarRequiresSchema(t *testing.T) {
	err := valueobjects.ValidatePayload(valueobjects.KindCalendar, valueobjects.Payload{
		"title": "Dentist",
	})

	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestValidatePayload_MoodRatingBounds(t *testing.T) {
	err := valueobjects.ValidatePayload(valueobjects.KindMood, valueobjects.Payload{
		"rating": 11,
	})
	assert.Error(t, err)

	err = valueobjects.ValidatePayload(valueobjects.KindMood, valueobjects.Payload{
		"rating": 7,
		"notes":  "pretty good day",
	})
	assert.NoError(t, err)
}

func TestValidatePayload_ExpenseCurrencyLength(t *testing.T) {
	err := valueobjects.ValidatePayload(valueobjects.KindExpense, valueobjects.Payload{
		"amount":   12.50,
		"currency": "dollars",
	})
	assert.Error(t, err)

	err = valueobjects.ValidatePayload(valueobjects.KindExpense, valueobjects.Payload{
		"amount":   12.50,
		"currency": "CAD",
		"vendor":   "coffee shop",
	})
	assert.NoError(t, err)
}

func TestValidatePayload_GenericKindsAcceptAnything(t *testing.T) {
	for _, kind := range []valueobjects.ModuleKind{
		valueobjects.KindMemo,
		valueobjects.KindTask,
		valueobjects.KindDiary,
		valueobjects.KindIdea,
		valueobjects.KindScreenshotNote,
	} {
		assert.NoError(t, valueobjects.ValidatePayload(kind, nil), "kind %s", kind)
		assert.NoError(t, valueobjects.ValidatePayload(kind, valueobjects.Payload{"anything": true}), "kind %s", kind)
	}
}

func TestDecodeCalendarPayload(t *testing.T) {
	payload, err := valueobjects.DecodeCalendarPayload(valueobjects.Payload{
		"title":    "Standup",
		"start":    "2026-08-29T09:00:00Z",
		"end":      "2026-08-29T09:15:00Z",
		"location": "office",
	})

	require.NoError(t, err)
	assert.Equal(t, "Standup", payload.Title)
	assert.Equal(t, "office", payload.Location)

	start, err := valueobjects.ParseEventTime(payload.Start)
	require.NoError(t, err)
	assert.Equal(t, time.August, start.Month())
}
