package dynamodb

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner-backend/domain/core/entities"
	"planner-backend/domain/core/valueobjects"
)

func TestEntrySKSortsChronologically(t *testing.T) {
	id := valueobjects.NewEntryID()
	dayStart := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	times := []time.Time{
		dayStart.Add(-time.Nanosecond), // last instant of the previous day
		dayStart,
		dayStart.Add(500 * time.Millisecond),
		dayStart.Add(time.Second),
		dayStart.Add(time.Second + 500*time.Millisecond),
	}

	keys := make([]string, len(times))
	for i, ts := range times {
		keys[i] = entrySK(ts, id)
	}

	assert.True(t, sort.StringsAreSorted(keys), "sort keys must order the same as their timestamps: %v", keys)
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i])
	}
}

func TestEntrySKFallsInsideItsDayWindow(t *testing.T) {
	id := valueobjects.NewEntryID()
	from := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	lower := "ENTRY#" + from.UTC().Format(skTimeLayout)
	upper := "ENTRY#" + to.UTC().Format(skTimeLayout)

	// An entry captured within the first fractional second of the day
	// belongs to that day's window, not the previous one.
	firstInstant := entrySK(from.Add(500*time.Millisecond), id)
	assert.GreaterOrEqual(t, firstInstant, lower)
	assert.Less(t, firstInstant, upper)

	atMidnight := entrySK(from, id)
	assert.GreaterOrEqual(t, atMidnight, lower)
	assert.Less(t, atMidnight, upper)

	lastInstant := entrySK(to.Add(-time.Nanosecond), id)
	assert.GreaterOrEqual(t, lastInstant, lower)
	assert.Less(t, lastInstant, upper)

	// The id suffix pushes an entry created exactly at the upper bound
	// above the bare bound string, so the inclusive BETWEEN behaves as a
	// half-open window.
	nextDay := entrySK(to, id)
	assert.Greater(t, nextDay, upper)
}

func TestEntryItemTimestampRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 8, 28, 0, 0, 0, 500000000, time.UTC)
	entry, err := entities.ReconstructEntry(
		valueobjects.NewEntryID(),
		"user-1",
		valueobjects.InputText,
		valueobjects.KindMemo,
		valueobjects.NewCanonicalContent("buy milk"),
		"buy milk",
		nil,
		entities.StatusProcessed,
		"",
		createdAt,
	)
	require.NoError(t, err)

	restored, err := fromEntryItem(toEntryItem(entry))
	require.NoError(t, err)
	assert.True(t, restored.CreatedAt().Equal(createdAt))
}
