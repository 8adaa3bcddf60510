package domain

import "time"

// dateLayouts are tried in order when parsing dates coming out of mapped
// payload fields. Sources disagree wildly on formats; the ambiguous
// dd/mm vs mm/dd pair keeps the dd/mm reading first because the primary
// deployments are European.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
}

// ParseFlexibleDate parses a date string against the accepted layouts and
// truncates it to a UTC calendar day. The second return value reports
// whether any layout matched.
func ParseFlexibleDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), true
		}
	}
	return time.Time{}, false
}

// ParseDateOrToday parses with the accepted layouts and falls back to
// today's date when nothing matches. Date ambiguity must never fail an
// item, only degrade it.
func ParseDateOrToday(s string) time.Time {
	if t, ok := ParseFlexibleDate(s); ok {
		return t
	}
	return Today()
}

// DateOnly truncates a timestamp to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar day.
func Today() time.Time {
	return DateOnly(time.Now())
}
