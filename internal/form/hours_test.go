package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"09:00", 540, true},
		{"9:30", 570, true},
		{"24:00", 1440, true},
		{"00:00", 0, true},
		{"24:30", 0, false},
		{"9", 0, false},
		{"09:5", 0, false},
		{"ab:cd", 0, false},
		{"25:00", 0, false},
		{"", 0, false},
		{" 10:15 ", 615, true},
		{"+9:00", 0, false},
		{"-0:30", 0, false},
		{"9:+5", 0, false},
		{"０９:００", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseClock(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:00", FormatClock(540))
	assert.Equal(t, "18:30", FormatClock(1110))
}

func TestDefaultWeekSundayClosed(t *testing.T) {
	week := DefaultWeek()
	for _, d := range Weekdays {
		h := week.Day(d)
		assert.Equal(t, DefaultOpen, h.Open, d.String())
		assert.Equal(t, DefaultClose, h.Close, d.String())
		assert.Equal(t, d == time.Sunday, h.Closed, d.String())
	}
}

func TestDayHoursWindow(t *testing.T) {
	open, close, ok := DayHours{Open: "10:00", Close: "19:00"}.Window()
	assert.True(t, ok)
	assert.Equal(t, 600, open)
	assert.Equal(t, 1140, close)

	_, _, ok = DayHours{Open: "10:00", Close: "19:00", Closed: true}.Window()
	assert.False(t, ok)

	_, _, ok = DayHours{Open: "19:00", Close: "10:00"}.Window()
	assert.False(t, ok)

	_, _, ok = DayHours{}.Window()
	assert.False(t, ok)
}

func TestSetDayRoundTrip(t *testing.T) {
	var week BusinessHours
	for i, d := range Weekdays {
		week.SetDay(d, DayHours{Open: FormatClock(i * 60), Close: "23:00"})
	}
	for i, d := range Weekdays {
		assert.Equal(t, FormatClock(i*60), week.Day(d).Open)
	}
	assert.Equal(t, "sunday", WeekdayKey(time.Sunday))
}
