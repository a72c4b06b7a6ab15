package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date form used everywhere internally
const DateLayout = "2006-01-02"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate converts the date formats seen in the spreadsheet
// (YYYY-MM-DD, DD/MM/YYYY, DD/MM/YY and the occasional YYYY/MM/DD) into
// canonical YYYY-MM-DD. Empty input yields "". Unrecognized input passes
// through trimmed; callers treat a non-canonical result as "no match"
// rather than an error. Idempotent for every recognized format.
func NormalizeDate(dateString string) string {
	trimmed := strings.TrimSpace(dateString)
	if trimmed == "" {
		return ""
	}
	if isoDatePattern.MatchString(trimmed) {
		return trimmed
	}

	if strings.Contains(trimmed, "/") {
		parts := strings.Split(trimmed, "/")
		if len(parts) == 3 {
			day, month, year := parts[0], parts[1], parts[2]
			if len(year) == 2 {
				year = "20" + year
			}
			if len(day) == 4 {
				// Year-first layout: YYYY/MM/DD
				year, month, day = parts[0], parts[1], parts[2]
			}
			return fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day))
		}
	}

	return trimmed
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// IsCanonicalDate reports whether s already has the canonical YYYY-MM-DD shape
func IsCanonicalDate(s string) bool {
	return isoDatePattern.MatchString(s)
}

// combineDateTime builds the instant for a canonical date and an HH:MM
// wall-clock time in the business timezone
func combineDateTime(date, hhmm string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" 15:04", date+" "+hhmm, loc)
}
