package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLast30Days(t *testing.T) {
	dubai, err := time.LoadLocation("Asia/Dubai")
	require.NoError(t, err)

	// 2024-03-15 10:00 UTC is 14:00 in Dubai (UTC+4). The window runs
	// from local midnight 29 days earlier through local end of day,
	// both shifted back to UTC.
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	window := Last30Days(now, dubai)

	assert.Equal(t, time.Date(2024, 2, 14, 20, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2024, 3, 15, 19, 59, 59, 999000000, time.UTC), window.To)
	assert.Equal(t, "2024-02-14T20:00:00.000Z", window.FromDate())
	assert.Equal(t, "2024-03-15T19:59:59.999Z", window.ToDate())
}

func TestLast30DaysSpansThirtyCalendarDays(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	window := Last30Days(now, time.UTC)

	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2024, 7, 1, 23, 59, 59, 999000000, time.UTC), window.To)
}

func TestWindowFormatKeepsMilliseconds(t *testing.T) {
	window := ReportingWindow{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 30, 23, 59, 59, 999000000, time.UTC),
	}

	assert.Equal(t, "2024-01-01T00:00:00.000Z", window.FromDate())
	assert.Equal(t, "2024-01-30T23:59:59.999Z", window.ToDate())
}
