package migration

import (
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the canonical form dates take everywhere in the system.
const DateLayout = "2006-01-02"

var (
	isoDatePattern    = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	koreanDatePattern = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)
)

// ParseFlexibleDate finds a date anywhere inside text. It first looks for an
// ISO YYYY-MM-DD substring, then for the Korean long form YYYY년 M월 D일.
// Callers pass whatever composite string they have (titles, file paths, CSV
// cells) and take the first match. Invalid calendar values (month 13, day 32)
// yield no match rather than an error.
func ParseFlexibleDate(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		if _, err := time.Parse(DateLayout, m[1]); err == nil {
			return m[1], true
		}
		return "", false
	}

	if m := koreanDatePattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if !validCalendarDate(year, month, day) {
			return "", false
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(DateLayout), true
	}

	return "", false
}

// validCalendarDate rejects values that time.Date would silently normalize
// (month 13 rolling into January).
func validCalendarDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}
