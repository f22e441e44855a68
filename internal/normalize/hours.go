package normalize

import (
	"time"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

var weekdayAliases = map[time.Weekday][]string{
	time.Monday:    {"monday", "mon"},
	time.Tuesday:   {"tuesday", "tue"},
	time.Wednesday: {"wednesday", "wed"},
	time.Thursday:  {"thursday", "thu"},
	time.Friday:    {"friday", "fri"},
	time.Saturday:  {"saturday", "sat"},
	time.Sunday:    {"sunday", "sun"},
}

// businessHours accepts either a per-weekday map or a single open/close
// pair. A pair expands to Monday through Saturday with Sunday closed.
func businessHours(c candidate) (form.BusinessHours, bool) {
	m, ok := asMap(c.value)
	if !ok {
		return form.BusinessHours{}, false
	}
	if hasWeekday(m) {
		return perDay(m), true
	}
	open, okOpen := stringField(m, "open", "start")
	close, okClose := stringField(m, "close", "end")
	if !okOpen || !okClose {
		return form.BusinessHours{}, false
	}
	return expandPair(open, close)
}

func hasWeekday(m map[string]any) bool {
	for _, aliases := range weekdayAliases {
		if _, ok := field(m, aliases...); ok {
			return true
		}
	}
	return false
}

func expandPair(open, close string) (form.BusinessHours, bool) {
	o, c, ok := window(open, close)
	if !ok {
		return form.BusinessHours{}, false
	}
	return form.ExpandPair(o, c), true
}

// window parses and re-formats an open/close pair. The pair must be ordered.
func window(open, close string) (string, string, bool) {
	o, okOpen := form.ParseClock(open)
	c, okClose := form.ParseClock(close)
	if !okOpen || !okClose || o >= c {
		return "", "", false
	}
	return form.FormatClock(o), form.FormatClock(c), true
}

// perDay resolves each weekday independently. Missing or unusable days
// keep the default week's value for that day.
func perDay(m map[string]any) form.BusinessHours {
	defaults := form.DefaultWeek()
	var week form.BusinessHours
	for _, d := range form.Weekdays {
		day := defaults.Day(d)
		if v, ok := field(m, weekdayAliases[d]...); ok {
			if dm, ok := asMap(v); ok {
				day = resolveDay(dm, day)
			}
		}
		week.SetDay(d, day)
	}
	return week
}

func resolveDay(dm map[string]any, day form.DayHours) form.DayHours {
	open, _ := stringField(dm, "open", "start")
	close, _ := stringField(dm, "close", "end")
	validHours := false
	if o, c, ok := window(open, close); ok {
		day.Open, day.Close = o, c
		validHours = true
	}
	if closed, ok := boolField(dm, "closed", "is_closed"); ok {
		day.Closed = closed
	} else if validHours {
		day.Closed = false
	}
	return day
}
