package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"iso_date", "2026-03-14", "2026-03-14"},
		{"rfc3339_z", "2026-03-14T09:30:00Z", "2026-03-14"},
		{"rfc3339_offset", "2026-03-14T09:30:00+02:00", "2026-03-14"},
		{"iso_datetime_no_zone", "2026-03-14T09:30:00", "2026-03-14"},
		{"space_datetime", "2026-03-14 09:30:00", "2026-03-14"},
		{"dd_slash_mm", "14/03/2026", "2026-03-14"},
		{"dd_dash_mm", "14-03-2026", "2026-03-14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFlexibleDate(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
			assert.Zero(t, got.Hour())
		})
	}
}

func TestParseFlexibleDateAmbiguousSlash(t *testing.T) {
	// 03/04 reads day-first; the layout order makes this deterministic.
	got, ok := ParseFlexibleDate("03/04/2026")
	require.True(t, ok)
	assert.Equal(t, "2026-04-03", got.Format("2006-01-02"))
}

func TestParseDateOrTodayFallback(t *testing.T) {
	got, ok := ParseFlexibleDate("not a date")
	assert.False(t, ok)
	assert.True(t, got.IsZero())

	today := Today()
	assert.Equal(t, today, ParseDateOrToday("definitely not a date"))
	assert.Equal(t, today, ParseDateOrToday(""))
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 3, 14, 23, 59, 59, 0, time.FixedZone("CET", 3600))
	got := DateOnly(in)
	assert.Equal(t, "2026-03-14", got.Format("2006-01-02"))
	assert.Equal(t, time.UTC, got.Location())
}
