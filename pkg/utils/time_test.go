package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey_UsesLocalDay(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	// 01:30 UTC on the 29th is still the evening of the 28th in Toronto
	ref := time.Date(2026, 8, 29, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-08-29", DayKey(ref, time.UTC))
	assert.Equal(t, "2026-08-28", DayKey(ref, toronto))
}

func TestDayWindow_CoversLocalCalendarDay(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	ref := time.Date(2026, 8, 28, 21, 0, 0, 0, toronto)
	from, to := DayWindow(ref, toronto)

	assert.True(t, from.Equal(time.Date(2026, 8, 28, 0, 0, 0, 0, toronto)))
	assert.Equal(t, 24*time.Hour, to.Sub(from))
	assert.True(t, from.Before(ref) && ref.Before(to))
}
