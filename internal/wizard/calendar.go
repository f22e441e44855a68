package wizard

import (
	"time"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

// Day is one column of the calendar grid.
type Day struct {
	Date    string       `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	Closed  bool         `json:"closed"`
}

// Cell is one half-hour slot of the grid.
type Cell struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	Selectable bool   `json:"selectable"`
	Selected   bool   `json:"selected"`
}

// Week is the visible calendar: seven days starting Monday, with rows
// spanning the widest opening window of the week.
type Week struct {
	Start string   `json:"start"`
	Days  []Day    `json:"days"`
	Times []string `json:"times"`
	Cells [][]Cell `json:"cells"`
}

// Cell returns the grid cell at date and time.
func (w Week) Cell(date, clock string) (Cell, bool) {
	for _, row := range w.Cells {
		for _, c := range row {
			if c.Date == date && c.Time == clock {
				return c, true
			}
		}
	}
	return Cell{}, false
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func mondayOf(t time.Time) time.Time {
	d := dateOf(t)
	return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
}

func (m *Machine) now() time.Time {
	return m.clock.Now()
}

func (m *Machine) today() time.Time {
	return dateOf(m.now())
}

func (m *Machine) parseDate(date string) (time.Time, bool) {
	d, err := time.ParseInLocation(DateFormat, date, m.now().Location())
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// gridWindow is the earliest opening and latest closing over open days.
func (m *Machine) gridWindow() (int, int, bool) {
	first, last, found := 0, 0, false
	hours := m.cfg.CalendarSettings.BusinessHours
	for _, d := range form.Weekdays {
		open, close, ok := hours.Day(d).Window()
		if !ok {
			continue
		}
		if !found || open < first {
			first = open
		}
		if !found || close > last {
			last = close
		}
		found = true
	}
	return first, last, found
}

// slotSelectable applies the calendar rules and then availability.
func (m *Machine) slotSelectable(date, clock string, duration int) bool {
	d, ok := m.parseDate(date)
	if !ok {
		return false
	}
	start, ok := form.ParseClock(clock)
	if !ok {
		return false
	}
	gridOpen, _, ok := m.gridWindow()
	if !ok || (start-gridOpen)%SlotMinutes != 0 {
		return false
	}
	open, close, ok := m.cfg.CalendarSettings.BusinessHours.Day(d.Weekday()).Window()
	if !ok || start < open || start+SlotMinutes > close {
		return false
	}

	now := m.now()
	today := dateOf(now)
	if d.Before(today) {
		return false
	}
	if adv := m.cfg.CalendarSettings.AdvanceBookingDays; adv > 0 && d.After(today.AddDate(0, 0, adv)) {
		return false
	}
	if d.Equal(today) && start <= now.Hour()*60+now.Minute() {
		return false
	}
	return m.avail.Available(date, form.FormatClock(start), duration)
}

func (m *Machine) dateSelectable(date string, duration int) bool {
	first, last, ok := m.gridWindow()
	if !ok {
		return false
	}
	for t := first; t+SlotMinutes <= last; t += SlotMinutes {
		if m.slotSelectable(date, form.FormatClock(t), duration) {
			return true
		}
	}
	return false
}

// Selectable reports whether a slot can be picked for the current selection.
func (m *Machine) Selectable(s State, date, clock string) bool {
	return m.slotSelectable(date, clock, m.Totals(s).Duration)
}

func (m *Machine) weekStart(s State) time.Time {
	if d, ok := m.parseDate(s.WeekStart); ok {
		return mondayOf(d)
	}
	return mondayOf(m.today())
}

// Week renders the visible week for s.
func (m *Machine) Week(s State) Week {
	start := m.weekStart(s)
	duration := m.Totals(s).Duration
	hours := m.cfg.CalendarSettings.BusinessHours

	w := Week{Start: start.Format(DateFormat), Days: make([]Day, 0, 7), Times: []string{}, Cells: [][]Cell{}}
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		_, _, open := hours.Day(d.Weekday()).Window()
		w.Days = append(w.Days, Day{Date: d.Format(DateFormat), Weekday: d.Weekday(), Closed: !open})
	}

	first, last, ok := m.gridWindow()
	if !ok {
		return w
	}
	for t := first; t+SlotMinutes <= last; t += SlotMinutes {
		clock := form.FormatClock(t)
		w.Times = append(w.Times, clock)
		row := make([]Cell, 0, 7)
		for _, day := range w.Days {
			row = append(row, Cell{
				Date:       day.Date,
				Time:       clock,
				Selectable: m.slotSelectable(day.Date, clock, duration),
				Selected:   day.Date == s.Date && clock == s.Time,
			})
		}
		w.Cells = append(w.Cells, row)
	}
	return w
}

// monthStart returns the first week of the month delta months away from
// the month of weekStart. A week belongs to the month of its Thursday.
func monthStart(weekStart time.Time, delta int) time.Time {
	thursday := weekStart.AddDate(0, 0, 3)
	first := time.Date(thursday.Year(), thursday.Month()+time.Month(delta), 1, 0, 0, 0, 0, weekStart.Location())
	w := mondayOf(first)
	if w.AddDate(0, 0, 3).Month() != first.Month() {
		w = w.AddDate(0, 0, 7)
	}
	return w
}

// inWeek reports whether date falls in the week starting at start.
func (m *Machine) inWeek(date string, start time.Time) bool {
	d, ok := m.parseDate(date)
	if !ok {
		return false
	}
	return !d.Before(start) && d.Before(start.AddDate(0, 0, 7))
}

func (m *Machine) navigate(s State, kind ActionKind) State {
	start := m.weekStart(s)
	var target time.Time
	switch kind {
	case ActionNextWeek:
		target = start.AddDate(0, 0, 7)
	case ActionPrevWeek:
		target = start.AddDate(0, 0, -7)
	case ActionNextMonth:
		target = monthStart(start, 1)
	case ActionPrevMonth:
		target = monthStart(start, -1)
	default:
		return s
	}
	if current := mondayOf(m.today()); target.Before(current) {
		target = current
	}
	s.WeekStart = target.Format(DateFormat)
	if s.Date != "" && !m.inWeek(s.Date, target) {
		s.Date, s.Time = "", ""
	}
	return s
}
