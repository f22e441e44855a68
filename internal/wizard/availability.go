package wizard

import "hash/fnv"

// Availability decides whether a slot can be offered. It is the single
// integration point for a real availability source.
type Availability interface {
	Available(date, time string, durationMinutes int) bool
}

// AvailabilityFunc adapts a function to Availability.
type AvailabilityFunc func(date, time string, durationMinutes int) bool

// Available calls f.
func (f AvailabilityFunc) Available(date, time string, durationMinutes int) bool {
	return f(date, time, durationMinutes)
}

// AlwaysAvailable offers every slot that passes the calendar rules.
var AlwaysAvailable = AvailabilityFunc(func(string, string, int) bool { return true })

// Placeholder is the stand-in compiled into forms until a real source is
// wired: FNV-1a over "<date>T<time>", one slot in five unavailable. It is
// deterministic and matches placeholderAvailability in the runtime.
var Placeholder = AvailabilityFunc(placeholder)

func placeholder(date, time string, _ int) bool {
	h := fnv.New32a()
	h.Write([]byte(date + "T" + time))
	return h.Sum32()%5 != 0
}
