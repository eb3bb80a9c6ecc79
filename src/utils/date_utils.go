package utils

import "time"

const ISODateFormat = "2006-01-02"

// ParseISODate parses a YYYY-MM-DD string. ok is false for empty or
// malformed input.
func ParseISODate(s string) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(ISODateFormat, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatISODate renders a time as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateFormat)
}

// DayStart truncates t to 00:00:00.000 of its calendar day (UTC).
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayEnd advances t to 23:59:59.999 of its calendar day (UTC).
func DayEnd(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 999e6, time.UTC)
}
