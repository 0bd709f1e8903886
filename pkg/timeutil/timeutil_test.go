package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKey_UsesSingaporeCalendar(t *testing.T) {
	// 17:30 UTC is already the next day in Singapore.
	utc := time.Date(2026, 3, 1, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-02", DateKey(utc))
}

func TestIsSameDay(t *testing.T) {
	a := time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC) // 00:00 SGT Mar 2
	b := time.Date(2026, 3, 2, 15, 59, 0, 0, time.UTC)
	c := time.Date(2026, 3, 1, 15, 59, 0, 0, time.UTC)
	assert.True(t, IsSameDay(a, b))
	assert.False(t, IsSameDay(a, c))
}

func TestStartOfWeek(t *testing.T) {
	sunday := Date(2026, 3, 8)
	assert.Equal(t, Date(2026, 3, 2), StartOfWeek(sunday))
	assert.Equal(t, Date(2026, 3, 2), StartOfWeek(Date(2026, 3, 2)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, Date(2026, 1, 15), d)

	_, err = ParseDate("15/01/2026")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 3, DaysBetween(Date(2026, 1, 1), Date(2026, 1, 4)))
	assert.Equal(t, 0, DaysBetween(Date(2026, 1, 1), Date(2026, 1, 1).Add(23*time.Hour)))
}

func TestFormatRelative(t *testing.T) {
	now := Date(2026, 1, 10).Add(12 * time.Hour)
	assert.Equal(t, "just now", FormatRelative(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", FormatRelative(now.Add(-time.Minute), now))
	assert.Equal(t, "3 hours ago", FormatRelative(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days ago", FormatRelative(now.AddDate(0, 0, -2), now))
}
