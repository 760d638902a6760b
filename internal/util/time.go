package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// IsWeekday reports whether t falls Monday through Friday
func IsWeekday(t time.Time) bool {
	return t.Weekday() != time.Saturday && t.Weekday() != time.Sunday
}

// Weekdays returns every Monday-Friday date in [start, end] as UTC midnights.
// Market holidays are included; the data provider returns no bars for them.
func Weekdays(start, end time.Time) []time.Time {
	start = civil(start)
	end = civil(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWeekday(d) {
			days = append(days, d)
		}
	}
	return days
}

// LastClosedMarketDate returns the most recent weekday whose 4:30 PM New York
// close has passed at input, as a UTC midnight date.
func LastClosedMarketDate(input time.Time) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Errorf("Failed to load location 'America/New_York': %v. Falling back to UTC.", err)
		loc = time.UTC
	}
	nowET := input.In(loc)

	// Start with today at 4:30 PM ET
	last := time.Date(nowET.Year(), nowET.Month(), nowET.Day(), 16, 30, 0, 0, loc)

	// Before the close, today's bars are not final yet
	if nowET.Before(last) {
		last = last.AddDate(0, 0, -1)
	}

	// Skip weekends backwards
	for !IsWeekday(last) {
		last = last.AddDate(0, 0, -1)
	}

	return time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
