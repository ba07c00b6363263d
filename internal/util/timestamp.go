// internal/util/timestamp.go
package util

import (
	"fmt"
	"strings"
	"time"
)

// unknownTime is rendered for timestamps the backend sent in a form we could
// not parse. Bad timestamps degrade to this placeholder instead of failing
// the whole view.
const unknownTime = "unknown time"

// ParseTimestamp parses the two timestamp forms the backend emits:
// ISO-8601 ("2024-01-05T10:30:00.123Z") and the space-separated
// "2024-01-05 10:30:00[.ffffff]" form, which is normalized to UTC ISO before
// parsing. Results are truncated to millisecond precision so both forms of
// the same instant compare equal. The second return value is false when the
// input was empty or unparseable.
func ParseTimestamp(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}

	// Normalize "YYYY-MM-DD HH:MM:SS[.ffffff]" to UTC ISO.
	if strings.Contains(s, " ") && !strings.Contains(s, "T") {
		s = strings.Replace(s, " ", "T", 1)
		if !hasZone(s) {
			s += "Z"
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Truncate(time.Millisecond), true
	}
	// ISO form without a zone designator is treated as UTC.
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC); err == nil {
		return t.Truncate(time.Millisecond), true
	}
	return time.Time{}, false
}

func hasZone(s string) bool {
	if strings.HasSuffix(s, "Z") {
		return true
	}
	// A +hh:mm or -hh:mm offset after the time portion.
	if i := strings.LastIndexAny(s, "+-"); i > len("2006-01-02T") {
		return true
	}
	return false
}

// FormatTimestamp renders a backend timestamp for display, degrading to a
// placeholder when it cannot be parsed.
func FormatTimestamp(value string) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return unknownTime
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// FormatAge renders how long ago a backend timestamp was, degrading to a
// placeholder when it cannot be parsed.
func FormatAge(value string, now time.Time) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return unknownTime
	}
	age := now.Sub(t)
	if age < 0 {
		age = 0
	}
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}

// Duration returns the elapsed time between two backend timestamps. The
// second return value is false when either end is missing or unparseable,
// in which case the pair is excluded from duration computations.
func Duration(start, end string) (time.Duration, bool) {
	s, ok := ParseTimestamp(start)
	if !ok {
		return 0, false
	}
	e, ok := ParseTimestamp(end)
	if !ok {
		return 0, false
	}
	return e.Sub(s), true
}

// FormatPercent renders a 0..1 rate as a percentage with one decimal place.
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// FormatRate renders a 0..1 rate or CER value with three decimal places.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.3f", rate)
}
