package report

import (
	"strings"
	"time"
)

// Layouts accepted by ParseDateAny after scrubbing, tried in order. Graph
// emits ISO-ish timestamps; the activity export uses bare dates.
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateAny parses a free-text timestamp from a Graph export into a UTC
// instant. The input is scrubbed first: surrounding whitespace, no-break
// spaces, zero-width spaces and BOMs are removed, a literal "nan" is treated
// as no value, and a trailing "Z" plus any ".000" fraction are stripped
// before parsing. Returns ok=false for anything unparseable; callers treat
// that as "no recorded value", never as an error.
func ParseDateAny(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\u200b", "")
	s = strings.ReplaceAll(s, "\ufeff", "")
	s = strings.TrimSpace(s)

	if s == "" || strings.EqualFold(s, "nan") {
		return time.Time{}, false
	}

	s = strings.TrimSuffix(s, "Z")
	s = strings.ReplaceAll(s, ".000", "")

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CivilDate converts a UTC instant to its calendar date in loc, returned as
// midnight UTC so dates compare and format without time-of-day noise.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}
