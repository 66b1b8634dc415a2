package model

import "time"

// Event is the canonical record produced by the ICS normalizer and consumed
// by the window selector, renderer and export layers.
//
// Start and End are absolute instants: a civil (floating) time in the feed
// has already been resolved against its TZID or the configured display
// timezone by the time an Event exists. A nil Start means the source VEVENT
// carried no DTSTART at all; a nil End means no DTEND. This layer does not
// guarantee End >= Start: broken feeds can and do emit inverted ranges, and
// validating that is the consumer's call.
type Event struct {
	Title       string
	Location    string
	Description string

	AllDay bool

	Start *time.Time
	End   *time.Time
}

// StartsIn reports whether the event has a start instant inside the
// inclusive window [from, to].
func (e Event) StartsIn(from, to time.Time) bool {
	if e.Start == nil {
		return false
	}
	if e.Start.Before(from) {
		return false
	}
	return !e.Start.After(to)
}
