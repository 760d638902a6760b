package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	numericDatePattern = regexp.MustCompile(`(\d{4})[-_](\d{2})[-_](\d{2})`)
	monthDatePattern   = regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[-_ ]?(\d{1,2})[-_ ]?(\d{4})`)
	isoDatePattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

var monthsByAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseDateToken finds a calendar date in free text such as a filename.
// Accepted forms: 2025-10-17, 2025_10_17 and Oct-17-2025 (any case, '-', '_' or ' ' separators).
func ParseDateToken(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}

	if m := numericDatePattern.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if t, ok := calendarDate(y, time.Month(mo), d); ok {
			return t, true
		}
	}

	if m := monthDatePattern.FindStringSubmatch(s); m != nil {
		mo := monthsByAbbrev[strings.ToLower(m[1])]
		d, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if t, ok := calendarDate(y, mo, d); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseISODateInName only accepts a YYYY-MM-DD token, the convention for vendor ranking exports.
func ParseISODateInName(name string) (time.Time, bool) {
	tok := isoDatePattern.FindString(name)
	if tok == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, tok)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AsOfSource records where a resolved snapshot date came from.
type AsOfSource string

const (
	AsOfExplicit AsOfSource = "explicit"
	AsOfFilename AsOfSource = "filename"
	AsOfToday    AsOfSource = "today"
)

// ResolveAsOf picks the snapshot date for an upload: an explicit value, then a date
// embedded in the filename, then the current date. An explicit value that does
// not parse is ignored.
func ResolveAsOf(explicit, filename string, now time.Time) (time.Time, AsOfSource) {
	if t, ok := ParseDateToken(explicit); ok {
		return t, AsOfExplicit
	}
	if t, ok := ParseDateToken(filename); ok {
		return t, AsOfFilename
	}
	return Today(now), AsOfToday
}

// Today truncates a wall-clock time to its calendar date in UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func calendarDate(y int, m time.Month, d int) (time.Time, bool) {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
