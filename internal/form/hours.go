package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Weekdays lists the days of an ISO week, Monday first.
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

var weekdayKeys = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

// WeekdayKey returns the JSON key of a weekday in BusinessHours.
func WeekdayKey(d time.Weekday) string {
	return weekdayKeys[d]
}

// Day returns the hours of weekday d.
func (b BusinessHours) Day(d time.Weekday) DayHours {
	switch d {
	case time.Monday:
		return b.Monday
	case time.Tuesday:
		return b.Tuesday
	case time.Wednesday:
		return b.Wednesday
	case time.Thursday:
		return b.Thursday
	case time.Friday:
		return b.Friday
	case time.Saturday:
		return b.Saturday
	default:
		return b.Sunday
	}
}

// SetDay replaces the hours of weekday d.
func (b *BusinessHours) SetDay(d time.Weekday, h DayHours) {
	switch d {
	case time.Monday:
		b.Monday = h
	case time.Tuesday:
		b.Tuesday = h
	case time.Wednesday:
		b.Wednesday = h
	case time.Thursday:
		b.Thursday = h
	case time.Friday:
		b.Friday = h
	case time.Saturday:
		b.Saturday = h
	default:
		b.Sunday = h
	}
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseClock parses "H:MM" or "HH:MM" into minutes since midnight.
// Only ASCII digits are accepted. "24:00" is accepted as end of day.
func ParseClock(s string) (int, bool) {
	parts := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if parts == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(parts[1])
	m, _ := strconv.Atoi(parts[2])
	if h > 24 || m > 59 || (h == 24 && m != 0) {
		return 0, false
	}
	return h*60 + m, true
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Window returns the opening window of the day in minutes.
// ok is false when the day is closed or its hours do not form a window.
func (d DayHours) Window() (open, close int, ok bool) {
	if d.Closed {
		return 0, 0, false
	}
	open, okOpen := ParseClock(d.Open)
	close, okClose := ParseClock(d.Close)
	if !okOpen || !okClose || open >= close {
		return 0, 0, false
	}
	return open, close, true
}
